package txbuilder

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/arbexec/arbconst"
)

func TestCheckProfitInstructionEncoding(t *testing.T) {
	require := require.New(t)
	payer := solana.NewWallet().PublicKey()
	ix := checkProfitInstruction(payer, 1000, 8_000_000)

	require.True(ix.ProgramID().Equals(arbconst.CheckProfitProgramID))

	data, err := ix.Data()
	require.NoError(err)
	require.Len(data, 16)

	minProfit := uint64(0)
	for i := 7; i >= 0; i-- {
		minProfit = minProfit<<8 | uint64(data[i])
	}
	require.EqualValues(8_000_000, minProfit)

	accounts := ix.Accounts()
	require.Len(accounts, 3)
	require.True(accounts[0].PublicKey.Equals(payer))
	require.True(accounts[0].IsSigner, "account 0 should be the signer payer")
}

func TestBuildMemoInstruction(t *testing.T) {
	require := require.New(t)
	payer := solana.NewWallet().PublicKey()
	ix := buildMemo("Memo-123", payer)
	require.True(ix.ProgramID().Equals(arbconst.MemoProgramID))
	data, err := ix.Data()
	require.NoError(err)
	require.Equal("Memo-123", string(data))
}
