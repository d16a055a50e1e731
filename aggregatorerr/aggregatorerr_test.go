package aggregatorerr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromCode(t *testing.T) {
	require := require.New(t)

	e, ok := FromCode(6004)
	require.True(ok)
	require.Equal(InvalidSlippage, e)

	_, ok = FromCode(100)
	require.True(ok, "FromCode(100) should resolve to NoProfitableFound")

	_, ok = FromCode(9999)
	require.False(ok, "FromCode(9999) should not resolve")
}

func TestExtractProgramError(t *testing.T) {
	require := require.New(t)
	text := "Transaction simulation failed: Error processing Instruction 4: Custom program error: 0x1774"
	e, ok := ExtractProgramError(text)
	require.True(ok, "expected to extract a program error")
	require.Equal(InvalidSlippage, e)
}

func TestExtractProgramErrorNoMatch(t *testing.T) {
	_, ok := ExtractProgramError("some unrelated error")
	require.False(t, ok)
}
