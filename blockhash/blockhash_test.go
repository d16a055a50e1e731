package blockhash

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestCacheZeroValueBeforeRefresh(t *testing.T) {
	require := require.New(t)
	c := &Cache{}
	c.value.Store(&entry{})
	require.Equal(solana.Hash{}, c.Get(), "expected zero hash before first refresh")
	require.Zero(c.Slot(), "expected zero slot before first refresh")
}
