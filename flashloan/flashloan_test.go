package flashloan

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestNoFlashLoanIsNoOp(t *testing.T) {
	require := require.New(t)
	var f FlashLoan = NoFlashLoan{}
	ix, err := f.Borrow(0)
	require.NoError(err)
	require.Nil(ix)
	ix, err = f.Repay()
	require.NoError(err)
	require.Nil(ix)
}

func TestNewKaminoRejectsMintMismatch(t *testing.T) {
	wrongMint := solana.NewWallet().PublicKey()
	requestedMint := solana.NewWallet().PublicKey()
	reserve := Reserve{MintPubkey: wrongMint}

	_, err := NewKamino(solana.NewWallet().PublicKey(), 1000, solana.NewWallet().PublicKey(), reserve, requestedMint)
	require.Error(t, err, "expected error on mint mismatch")
}

func TestKaminoBorrowRepayRoundTrip(t *testing.T) {
	require := require.New(t)
	mint := solana.NewWallet().PublicKey()
	reserve := Reserve{
		LendingMarket:   solana.NewWallet().PublicKey(),
		LiquiditySupply: solana.NewWallet().PublicKey(),
		MintPubkey:      mint,
	}
	user := solana.NewWallet().PublicKey()

	k, err := NewKamino(user, 5_000_000, solana.NewWallet().PublicKey(), reserve, mint)
	require.NoError(err)

	borrowIx, err := k.Borrow(2)
	require.NoError(err)
	require.True(borrowIx.ProgramID().Equals(kaminoProgramID))

	repayIx, err := k.Repay()
	require.NoError(err)
	data, err := repayIx.Data()
	require.NoError(err)
	require.EqualValues(2, data[16], "expected repay to reference borrow instruction index 2")
}
