package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInputAmount(t *testing.T) {
	require := require.New(t)
	cases := []struct {
		in   interface{}
		want uint64
	}{
		{"1sol", 1_000_000_000},
		{"1usdc", 1_000_000},
		{"2500000", 2_500_000},
		{"0.5sol", 500_000_000},
		{nil, 0},
		{int(42), 42},
	}

	for _, c := range cases {
		got, err := ParseInputAmount(c.in)
		require.NoError(err, "ParseInputAmount(%v)", c.in)
		require.Equal(c.want, got, "ParseInputAmount(%v)", c.in)
	}
}

func TestParseInputAmountInvalid(t *testing.T) {
	_, err := ParseInputAmount("abc")
	require.Error(t, err, "expected error for malformed input_amount")
}

func TestHTTPRequestTimeoutZeroDisables(t *testing.T) {
	c := &Config{HTTPRequestTimeoutMillis: 0}
	require.Zero(t, c.HTTPRequestTimeout(), "expected zero duration when disabled")
}
