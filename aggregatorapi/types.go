// Package aggregatorapi defines the wire types exchanged with a
// Jupiter-shaped swap aggregator's /quote and /swap-instructions
// endpoints. Grounded on original_source/src/types.rs; field names and
// the exclusive dexes/excludeDexes encoding are preserved exactly since
// they're dictated by the remote API, not a design choice of ours.
package aggregatorapi

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// QuoteRequest is sent as query parameters to GET /quote. Exactly one of
// Dexes or ExcludeDexes is ever sent, with Dexes taking priority when
// both are set, matching the Rust QuoteRequest's custom Serialize impl.
type QuoteRequest struct {
	InputMint        string
	OutputMint       string
	Amount           uint64
	SlippageBps      uint64
	Dexes            []string
	ExcludeDexes     []string
	OnlyDirectRoutes bool
	PlatformFeeBps   uint32
	DynamicSlippage  bool
}

// QueryValues renders the request as the query string the aggregator
// expects, applying the same dexes/excludeDexes exclusivity rule as the
// original's hand-written Serialize implementation.
func (q QuoteRequest) QueryValues() map[string]string {
	v := map[string]string{
		"inputMint":        q.InputMint,
		"outputMint":       q.OutputMint,
		"amount":           fmt.Sprintf("%d", q.Amount),
		"slippageBps":      fmt.Sprintf("%d", q.SlippageBps),
		"onlyDirectRoutes": fmt.Sprintf("%t", q.OnlyDirectRoutes),
		"platformFeeBps":   fmt.Sprintf("%d", q.PlatformFeeBps),
		"dynamicSlippage":  fmt.Sprintf("%t", q.DynamicSlippage),
	}
	switch {
	case len(q.Dexes) > 0:
		v["dexes"] = strings.Join(q.Dexes, ",")
	case len(q.ExcludeDexes) > 0:
		v["excludeDexes"] = strings.Join(q.ExcludeDexes, ",")
	}
	return v
}

// QuoteResponse is returned by GET /quote. It round-trips verbatim
// through SwapRequest.QuoteResponse below, so it's kept the exact shape
// the aggregator returns rather than trimmed to fields we read.
type QuoteResponse struct {
	InputMint           string       `json:"inputMint"`
	InAmount            string       `json:"inAmount"`
	OutputMint          string       `json:"outputMint"`
	OutAmount           string       `json:"outAmount"`
	OtherAmountThreshold string      `json:"otherAmountThreshold"`
	SwapMode            string       `json:"swapMode"`
	SlippageBps         uint64       `json:"slippageBps"`
	PlatformFee         *PlatformFee `json:"platformFee,omitempty"`
	PriceImpactPct      string       `json:"priceImpactPct"`
	RoutePlan           []RoutePlan  `json:"routePlan"`
	ContextSlot         uint64       `json:"contextSlot"`
	TimeTaken           float64      `json:"timeTaken"`
}

type PlatformFee struct {
	Amount  string  `json:"amount"`
	FeeBps  uint64  `json:"feeBps"`
	FeeMint *string `json:"feeMint,omitempty"`
}

type RoutePlan struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  uint64   `json:"percent"`
}

type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount"`
	FeeMint    string `json:"feeMint"`
}

// SwapRequest is POSTed as JSON to /swap-instructions.
type SwapRequest struct {
	QuoteResponse             QuoteResponse              `json:"quoteResponse"`
	UserPublicKey              string                     `json:"userPublicKey"`
	Payer                      string                     `json:"payer"`
	WrapAndUnwrapSol           *bool                      `json:"wrapAndUnwrapSol,omitempty"`
	FeeAccount                 *string                    `json:"feeAccount,omitempty"`
	AsLegacyTransaction        *bool                      `json:"asLegacyTransaction,omitempty"`
	PrioritizationFeeLamports  *PrioritizationFeeLamports `json:"prioritizationFeeLamports,omitempty"`
}

type PrioritizationFeeLamports struct {
	PriorityLevelWithMaxLamports *PriorityLevelWithMaxLamports `json:"priorityLevelWithMaxLamports,omitempty"`
	JitoTipLamports              *uint64                       `json:"jitoTipLamports,omitempty"`
}

type PriorityLevelWithMaxLamports struct {
	PriorityLevel string `json:"priorityLevel"`
	MaxLamports   uint64 `json:"maxLamports"`
}

// SwapResponse is the decoded /swap-instructions result: every
// instruction the aggregator wants assembled into the final transaction.
type SwapResponse struct {
	ComputeBudgetInstructions  []EncodedInstruction  `json:"computeBudgetInstructions"`
	SetupInstructions          []EncodedInstruction  `json:"setupInstructions"`
	SwapInstruction            EncodedInstruction    `json:"swapInstruction"`
	CleanupInstruction         *EncodedInstruction   `json:"cleanupInstruction,omitempty"`
	OtherInstructions          []EncodedInstruction  `json:"otherInstructions"`
	AddressLookupTableAddresses []string             `json:"addressLookupTableAddresses"`
}

type EncodedInstruction struct {
	ProgramID string               `json:"programId"`
	Data      string               `json:"data"`
	Accounts  []EncodedAccountMeta `json:"accounts"`
}

// ToInstruction decodes the base64 data and parses every pubkey,
// matching the Rust From<EncodedInstruction> for Instruction impl.
func (e EncodedInstruction) ToInstruction() (solana.Instruction, error) {
	programID, err := solana.PublicKeyFromBase58(e.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid programId %q: %w", e.ProgramID, err)
	}
	data, err := base64.StdEncoding.DecodeString(e.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid instruction data: %w", err)
	}
	metas := make(solana.AccountMetaSlice, 0, len(e.Accounts))
	for _, a := range e.Accounts {
		meta, err := a.ToAccountMeta()
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	return solana.NewInstruction(programID, metas, data), nil
}

type EncodedAccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

func (a EncodedAccountMeta) ToAccountMeta() (*solana.AccountMeta, error) {
	pk, err := solana.PublicKeyFromBase58(a.Pubkey)
	if err != nil {
		return nil, fmt.Errorf("invalid pubkey %q: %w", a.Pubkey, err)
	}
	return solana.NewAccountMeta(pk, a.IsWritable, a.IsSigner), nil
}

// SwapData pairs two quotes for the two legs of a round-trip arbitrage
// cycle, mirroring the Rust SwapData struct. Profit is the signed
// diff (leg2 out amount minus the initial input amount) computed when
// the opportunity was evaluated, carried along so the builder can size
// the tip off the actual profit rather than re-deriving it.
type SwapData struct {
	Data1  QuoteResponse
	Data2  QuoteResponse
	Profit int64
}
