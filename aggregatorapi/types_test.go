package aggregatorapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueryValuesDexesTakesPriority(t *testing.T) {
	require := require.New(t)
	q := QuoteRequest{
		Dexes:        []string{"Raydium", "Orca"},
		ExcludeDexes: []string{"Whirlpool"},
	}
	v := q.QueryValues()
	require.Equal("Raydium,Orca", v["dexes"])
	_, ok := v["excludeDexes"]
	require.False(ok, "excludeDexes should be absent when dexes is set")
}

func TestQueryValuesExcludeDexesWhenDexesEmpty(t *testing.T) {
	require := require.New(t)
	q := QuoteRequest{ExcludeDexes: []string{"Whirlpool"}}
	v := q.QueryValues()
	require.Equal("Whirlpool", v["excludeDexes"])
	_, ok := v["dexes"]
	require.False(ok, "dexes should be absent when empty")
}

func TestQueryValuesNeitherSet(t *testing.T) {
	require := require.New(t)
	q := QuoteRequest{}
	v := q.QueryValues()
	_, dexesOK := v["dexes"]
	_, excludeOK := v["excludeDexes"]
	require.False(dexesOK, "dexes should be absent")
	require.False(excludeOK, "excludeDexes should be absent")
}
