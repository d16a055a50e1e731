// Package txbuilder assembles the two legs of a round-trip arbitrage
// swap plus a tip transfer, memo, and profit-check guard into a single
// versioned (v0) transaction. Grounded on original_source/src/engine.rs's
// build_tx, convert_versioned_transaction, get_check_profit_ix and
// build_memo.
package txbuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/luxfi/arbexec/aggregatorapi"
	"github.com/luxfi/arbexec/arbconst"
)

// computeBudgetSetPriceDiscriminant is the ComputeBudgetInstruction tag
// for SetComputeUnitPrice; see
// https://github.com/solana-labs/solana/blob/master/sdk/src/compute_budget.rs
const computeBudgetSetPriceDiscriminant = 0x03

// Plan is everything needed to assemble the fused transaction for one
// arbitrage cycle.
type Plan struct {
	Payer              solana.PrivateKey
	UserPubkey         solana.PublicKey
	Leg1               aggregatorapi.SwapResponse
	Leg2               aggregatorapi.SwapResponse
	ALTs               []*solana.AddressLookupTableAccount
	RecentBlockhash    solana.Hash
	MinProfitAmount    uint64
	CurrentBalance     uint64
	BundleSubmit       bool
	TipAccount         solana.PublicKey
	TipAmountLamports  uint64
}

// Build assembles the fused transaction: [tip?] -> leg1 (compute-budget
// filtered under bundle submission) -> leg2 -> memo -> profit check.
func Build(plan Plan) (*solana.Transaction, error) {
	var instructions []solana.Instruction

	if plan.BundleSubmit {
		tip := system.NewTransferInstruction(plan.TipAmountLamports, plan.UserPubkey, plan.TipAccount).Build()
		instructions = append(instructions, tip)
	}

	leg1Budget, err := decodeComputeBudget(plan.Leg1.ComputeBudgetInstructions, plan.BundleSubmit)
	if err != nil {
		return nil, fmt.Errorf("decode leg1 compute budget: %w", err)
	}
	instructions = append(instructions, leg1Budget...)

	leg1Ixs, err := decodeLeg(plan.Leg1)
	if err != nil {
		return nil, fmt.Errorf("decode leg1: %w", err)
	}
	instructions = append(instructions, leg1Ixs...)

	// Leg2's compute-budget group is dropped unconditionally in both
	// modes: a second full budget group would be redundant, and in
	// bundle mode its SetComputeUnitPrice instruction would conflict
	// with the tip transfer the same way leg1's does.
	leg2Ixs, err := decodeLeg(plan.Leg2)
	if err != nil {
		return nil, fmt.Errorf("decode leg2: %w", err)
	}
	instructions = append(instructions, leg2Ixs...)

	memoIx := buildMemo(fmt.Sprintf("Memo-%d", time.Now().UnixMilli()), plan.Payer.PublicKey())
	instructions = append(instructions, memoIx)

	instructions = append(instructions, checkProfitInstruction(plan.Payer.PublicKey(), plan.CurrentBalance, plan.MinProfitAmount))

	tx, err := solana.NewTransaction(
		instructions,
		plan.RecentBlockhash,
		solana.TransactionPayer(plan.UserPubkey),
		solana.TransactionAddressTables(addressTableMap(plan.ALTs)),
	)
	if err != nil {
		return nil, fmt.Errorf("compile transaction: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(plan.Payer.PublicKey()) {
			return &plan.Payer
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	encoded, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal transaction: %w", err)
	}
	if len(encoded) > arbconst.TxSize {
		return nil, fmt.Errorf("transaction too large: %d bytes exceeds %d byte limit", len(encoded), arbconst.TxSize)
	}

	return tx, nil
}

// decodeComputeBudget decodes one leg's compute-budget instruction group.
// When forBundle is true, SetComputeUnitPrice instructions are dropped
// since a bundle tip already buys priority — setting both wastes compute
// units; otherwise every instruction in the group is kept.
func decodeComputeBudget(encoded []aggregatorapi.EncodedInstruction, forBundle bool) ([]solana.Instruction, error) {
	var out []solana.Instruction
	for _, enc := range encoded {
		ix, err := enc.ToInstruction()
		if err != nil {
			return nil, err
		}
		if forBundle {
			data, err := ix.Data()
			if err != nil {
				return nil, err
			}
			if len(data) > 0 && data[0] == computeBudgetSetPriceDiscriminant {
				continue
			}
		}
		out = append(out, ix)
	}
	return out, nil
}

// decodeLeg decodes one aggregator swap leg's setup/swap/cleanup
// instructions. The compute-budget group is handled separately by
// decodeComputeBudget since leg1 and leg2 follow different rules.
func decodeLeg(leg aggregatorapi.SwapResponse) ([]solana.Instruction, error) {
	var out []solana.Instruction

	for _, enc := range leg.SetupInstructions {
		ix, err := enc.ToInstruction()
		if err != nil {
			return nil, err
		}
		out = append(out, ix)
	}

	swapIx, err := leg.SwapInstruction.ToInstruction()
	if err != nil {
		return nil, err
	}
	out = append(out, swapIx)

	if leg.CleanupInstruction != nil {
		cleanupIx, err := leg.CleanupInstruction.ToInstruction()
		if err != nil {
			return nil, err
		}
		out = append(out, cleanupIx)
	}

	return out, nil
}

func buildMemo(memo string, signer solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		arbconst.MemoProgramID,
		solana.AccountMetaSlice{solana.NewAccountMeta(signer, false, true)},
		[]byte(memo),
	)
}

// checkProfitInstruction guards the cycle on-chain: the profit-check
// program reverts the whole transaction unless the payer's balance after
// every prior instruction clears currentBalance+minProfit.
func checkProfitInstruction(payer solana.PublicKey, currentBalance, minProfit uint64) solana.Instruction {
	data := make([]byte, 16)
	leUint64(data[0:8], minProfit)
	leUint64(data[8:16], currentBalance)

	return solana.NewInstruction(
		arbconst.CheckProfitProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(arbconst.FeeRecipient, true, false),
			solana.NewAccountMeta(arbconst.SystemProgramID, false, false),
		},
		data,
	)
}

func leUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func addressTableMap(tables []*solana.AddressLookupTableAccount) map[solana.PublicKey]solana.PublicKeySlice {
	m := make(map[solana.PublicKey]solana.PublicKeySlice, len(tables))
	for _, t := range tables {
		m[t.Key] = t.Addresses
	}
	return m
}

// CurrentBalance fetches the payer's current lamport balance, used as the
// "before" snapshot the profit-check instruction compares against.
func CurrentBalance(ctx context.Context, client *rpc.Client, pubkey solana.PublicKey) (uint64, error) {
	out, err := client.GetBalance(ctx, pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return out.Value, nil
}
