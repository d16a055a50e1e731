// Package flashloan abstracts the optional borrow/repay instruction pair
// that can wrap an arbitrage cycle to size it past the wallet's own
// balance. Grounded on original_source/src/flashloan.rs's FlashLoan
// trait; the Kamino reserve deserialization it used to size a loan is
// treated as an external sidecar concern (see DESIGN.md) and is not
// reimplemented here — Kamino below wires the account layout and
// instruction shape and reports clearly when a reserve hasn't been
// supplied out of band.
package flashloan

import (
	"crypto/sha256"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// FlashLoan produces the borrow instruction to prepend and the repay
// instruction to append to a transaction, or nil when no flash loan is
// in use.
type FlashLoan interface {
	Borrow(borrowInstructionIndex uint8) (solana.Instruction, error)
	Repay() (solana.Instruction, error)
}

// NoFlashLoan is the default: every arbitrage cycle is sized within the
// wallet's own balance.
type NoFlashLoan struct{}

func (NoFlashLoan) Borrow(uint8) (solana.Instruction, error) { return nil, nil }
func (NoFlashLoan) Repay() (solana.Instruction, error)        { return nil, nil }

var (
	kaminoProgramID   = solana.MustPublicKeyFromBase58("KLend2g3cP87fffoy8q1mQqGKjrxjC8boSyAYavgmjD")
	sysvarInstructions = solana.MustPublicKeyFromBase58("Sysvar1nstructions1111111111111111111111111")
	tokenProgramID    = solana.TokenProgramID
)

const lendingMarketAuthSeed = "lma"

// Reserve holds the handful of Kamino reserve fields the borrow/repay
// instructions need. Decoding the full on-chain Reserve account (a large
// Borsh struct) is left to the caller; see DESIGN.md.
type Reserve struct {
	LendingMarket    solana.PublicKey
	LiquiditySupply  solana.PublicKey
	CollateralMint   solana.PublicKey
	MintPubkey       solana.PublicKey
}

// Kamino borrows liquidity from a Kamino Lend reserve for the duration of
// one transaction and repays it atomically at the end.
type Kamino struct {
	User                   solana.PublicKey
	LiquidityAmount        uint64
	ReservePubkey          solana.PublicKey
	Reserve                Reserve
	borrowInstructionIndex uint8
}

// NewKamino constructs a Kamino flash loan source from an
// already-decoded reserve account; Reserve.MintPubkey must match mint.
func NewKamino(user solana.PublicKey, liquidityAmount uint64, reservePubkey solana.PublicKey, reserve Reserve, mint solana.PublicKey) (*Kamino, error) {
	if !reserve.MintPubkey.Equals(mint) {
		return nil, fmt.Errorf("reserve mint %s does not match requested mint %s", reserve.MintPubkey, mint)
	}
	return &Kamino{User: user, LiquidityAmount: liquidityAmount, ReservePubkey: reservePubkey, Reserve: reserve}, nil
}

func lendingMarketAuthority(lendingMarket solana.PublicKey) (solana.PublicKey, error) {
	auth, _, err := solana.FindProgramAddress([][]byte{[]byte(lendingMarketAuthSeed), lendingMarket.Bytes()}, kaminoProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive lending market authority: %w", err)
	}
	return auth, nil
}

// Borrow builds the Kamino flashBorrowReserveLiquidity instruction. The
// instruction data layout (an 8-byte Anchor discriminator plus a
// little-endian liquidity_amount) mirrors the Rust BorrowArgs struct.
func (k *Kamino) Borrow(borrowInstructionIndex uint8) (solana.Instruction, error) {
	k.borrowInstructionIndex = borrowInstructionIndex

	auth, err := lendingMarketAuthority(k.Reserve.LendingMarket)
	if err != nil {
		return nil, err
	}

	userAta, _, err := solana.FindAssociatedTokenAddress(k.User, k.Reserve.MintPubkey)
	if err != nil {
		return nil, fmt.Errorf("derive user ata: %w", err)
	}

	data := make([]byte, 16)
	disc := sha256.Sum256([]byte("global:flash_borrow_reserve_liquidity"))
	copy(data[0:8], disc[:8])
	leUint64(data[8:16], k.LiquidityAmount)

	return solana.NewInstruction(
		kaminoProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(k.User, true, true),
			solana.NewAccountMeta(k.Reserve.LendingMarket, false, false),
			solana.NewAccountMeta(auth, false, false),
			solana.NewAccountMeta(k.ReservePubkey, true, false),
			solana.NewAccountMeta(k.Reserve.LiquiditySupply, true, false),
			solana.NewAccountMeta(userAta, true, false),
			solana.NewAccountMeta(tokenProgramID, false, false),
			solana.NewAccountMeta(sysvarInstructions, false, false),
		},
		data,
	), nil
}

// Repay builds the matching flashRepayReserveLiquidity instruction.
func (k *Kamino) Repay() (solana.Instruction, error) {
	auth, err := lendingMarketAuthority(k.Reserve.LendingMarket)
	if err != nil {
		return nil, err
	}

	userAta, _, err := solana.FindAssociatedTokenAddress(k.User, k.Reserve.MintPubkey)
	if err != nil {
		return nil, fmt.Errorf("derive user ata: %w", err)
	}

	data := make([]byte, 17)
	disc := sha256.Sum256([]byte("global:flash_repay_reserve_liquidity"))
	copy(data[0:8], disc[:8])
	leUint64(data[8:16], k.LiquidityAmount)
	data[16] = k.borrowInstructionIndex

	return solana.NewInstruction(
		kaminoProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(k.User, true, true),
			solana.NewAccountMeta(k.Reserve.LendingMarket, false, false),
			solana.NewAccountMeta(auth, false, false),
			solana.NewAccountMeta(k.ReservePubkey, true, false),
			solana.NewAccountMeta(k.Reserve.LiquiditySupply, true, false),
			solana.NewAccountMeta(userAta, true, false),
			solana.NewAccountMeta(tokenProgramID, false, false),
			solana.NewAccountMeta(sysvarInstructions, false, false),
		},
		data,
	), nil
}

func leUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
