// Package arbutil collects the small standalone helpers that don't
// belong to any one component: tip-account selection, tip-amount
// calculation, and latency gating. Grounded on original_source/src/util.rs.
package arbutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gagliardetto/solana-go"
)

// jitoTipAccounts are the documented Jito tip payment accounts; one is
// picked at random for each bundle to spread load across them.
var jitoTipAccounts = []string{
	"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5",
	"HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe",
	"Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY",
	"ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49",
	"DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh",
	"ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt",
	"DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL",
	"3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT",
}

// RandomTipAccount returns a random Jito tip-payment account.
func RandomTipAccount() (solana.PublicKey, error) {
	selected := jitoTipAccounts[rand.Intn(len(jitoTipAccounts))]
	pk, err := solana.PublicKeyFromBase58(selected)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid tip account %q: %w", selected, err)
	}
	return pk, nil
}

// LatencyTooHigh reports whether elapsed reaches or exceeds maxLatency. A zero
// maxLatency disables the check entirely.
func LatencyTooHigh(elapsed, maxLatency time.Duration) bool {
	return maxLatency != 0 && elapsed >= maxLatency
}

// CalculateTip applies the configured Jito tip policy to a profit
// amount: either a percentage of profit clamped to [min, max], or a
// fixed amount when percentage mode is disabled.
func CalculateTip(profit int64, rateEnabled bool, ratePercent uint8, minTip, maxTip, fixedTip uint64) int64 {
	if !rateEnabled {
		return int64(fixedTip)
	}

	tip := profit * int64(ratePercent) / 100
	switch {
	case tip > int64(maxTip):
		return int64(maxTip)
	case tip < int64(minTip):
		return int64(minTip)
	default:
		return tip
	}
}
