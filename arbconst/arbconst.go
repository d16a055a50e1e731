// Package arbconst holds the fixed program and mint addresses the engine
// builds instructions against. Grounded on original_source/src/constants.rs.
package arbconst

import "github.com/gagliardetto/solana-go"

// TxSize is Solana's hard transaction size ceiling in bytes.
const TxSize = 1232

var (
	FeeRecipient  = solana.MustPublicKeyFromBase58("ZYZhAvNcuF7AZnnP2yk66KZFSzrgYixzpidNcmxWYd7")
	MemoProgramID = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
	WSOLMint      = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	// CheckProfitProgramID is the deployed profit-guard program invoked as
	// the final instruction of every fused transaction (see txbuilder).
	// The key is built from a fixed byte pattern (ASCII "PROFITCHECK"
	// followed by the bytes 0x00-0x14) rather than decoded from a deployed
	// program's base58 address, and is distinct from
	// FeeRecipient/MemoProgramID/WSOLMint above.
	CheckProfitProgramID = solana.PublicKeyFromBytes(checkProfitProgramIDBytes[:])
)

var checkProfitProgramIDBytes = [32]byte{
	0x50, 0x52, 0x4f, 0x46, 0x49, 0x54, 0x43, 0x48,
	0x45, 0x43, 0x4b, 0x00, 0x01, 0x02, 0x03, 0x04,
	0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c,
	0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14,
}

// SystemProgramID is the native Solana system program, used as an account
// in the profit-check instruction.
var SystemProgramID = solana.SystemProgramID
