// Package submission sends a built transaction either directly over RPC
// or as a bundle through a relay, and reconciles the bundle's landing
// status. Grounded on original_source/src/engine.rs's
// send_transaction_with_options, check_bundle_id_status and
// check_final_bundle_status.
package submission

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/luxfi/arbexec/aggregatorerr"
	"github.com/luxfi/arbexec/bundlerelay"
	"github.com/luxfi/arbexec/xlog"
)

const (
	pollInterval = 2 * time.Second
	maxAttempts  = 30
)

var log = xlog.New("submission")

// SubmitOrdinary sends tx over the given RPC client and waits for
// confirmation, mirroring send_transaction_with_options' two paths: with
// skip_preflight, send without simulation and then confirm; otherwise
// send with preflight and confirm exactly the same way, since solana-go
// (unlike solana-client) has no built-in send_and_confirm_transaction.
func SubmitOrdinary(ctx context.Context, client *rpc.Client, tx *solana.Transaction, skipPreflight bool) (solana.Signature, error) {
	opts := rpc.TransactionOpts{SkipPreflight: skipPreflight}
	if !skipPreflight {
		opts.PreflightCommitment = rpc.CommitmentConfirmed
	}

	sig, err := client.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		if code, ok := aggregatorerr.ExtractProgramError(err.Error()); ok {
			return solana.Signature{}, fmt.Errorf("instruction failed, %s: %w", code, err)
		}
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}

	log.Debug("transaction submitted, awaiting confirmation", "signature", sig.String())
	if err := confirmTransaction(ctx, client, sig); err != nil {
		return solana.Signature{}, fmt.Errorf("confirm transaction %s: %w", sig, err)
	}

	log.Debug("transaction confirmed", "signature", sig.String())
	return sig, nil
}

// confirmTransaction polls GetSignatureStatuses at confirmed commitment
// until the signature reaches at least confirmed status, its on-chain
// execution fails, or maxAttempts is exhausted.
func confirmTransaction(ctx context.Context, client *rpc.Client, sig solana.Signature) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := client.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			log.Debug("signature status check failed", "attempt", attempt, "err", err)
		} else if len(out.Value) > 0 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction failed on-chain: %v", status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed || status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}

		if attempt < maxAttempts {
			if err := sleepOrDone(ctx, pollInterval); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("signature did not reach confirmed status after %d attempts", maxAttempts)
}

// SubmitBundle base64-encodes tx and submits it as a single-transaction
// bundle via relay, returning the relay-assigned bundle UUID.
func SubmitBundle(ctx context.Context, relay *bundlerelay.Client, tx *solana.Transaction) (string, error) {
	encoded, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("marshal transaction: %w", err)
	}
	b64 := base64.StdEncoding.EncodeToString(encoded)

	uuid, err := relay.SendBundle(ctx, []string{b64})
	if err != nil {
		return "", fmt.Errorf("send bundle: %w", err)
	}

	log.Debug("bundle submitted", "uuid", uuid, "signature", tx.Signatures[0].String())
	return uuid, nil
}

// ReconcileBundle polls the relay for a bundle's terminal status: first
// waiting for it to land on-chain (phase 1), then for it to reach at
// least "confirmed" finality and verifying it executed without error
// (phase 2). It returns once finalized, or an error after 30 attempts
// (60s) at either phase.
func ReconcileBundle(ctx context.Context, relay *bundlerelay.Client, bundleUUID string) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		statuses, err := relay.GetInFlightBundleStatuses(ctx, []string{bundleUUID})
		if err != nil {
			log.Debug("in-flight bundle status check failed", "attempt", attempt, "err", err)
		} else if len(statuses) > 0 {
			switch statuses[0].Status {
			case "Landed":
				return reconcileFinal(ctx, relay, bundleUUID)
			case "Pending":
				// keep polling
			default:
				log.Debug("unexpected in-flight bundle status", "status", statuses[0].Status)
			}
		}

		if attempt < maxAttempts {
			if err := sleepOrDone(ctx, pollInterval); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("bundle %s did not land after %d attempts", bundleUUID, maxAttempts)
}

func reconcileFinal(ctx context.Context, relay *bundlerelay.Client, bundleUUID string) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		statuses, err := relay.GetBundleStatuses(ctx, []string{bundleUUID})
		if err != nil {
			log.Debug("final bundle status check failed", "attempt", attempt, "err", err)
		} else if len(statuses) > 0 {
			status := statuses[0]
			switch status.ConfirmationStatus {
			case "confirmed":
				if !status.TransactionOK() {
					return fmt.Errorf("bundle %s transaction failed on-chain", bundleUUID)
				}
			case "finalized":
				if !status.TransactionOK() {
					return fmt.Errorf("bundle %s transaction failed on-chain", bundleUUID)
				}
				if len(status.Transactions) > 0 {
					log.Debug("bundle finalized", "uuid", bundleUUID, "tx", status.Transactions[0])
				}
				return nil
			default:
				log.Debug("unexpected final bundle status", "status", status.ConfirmationStatus)
			}
		}

		if attempt < maxAttempts {
			if err := sleepOrDone(ctx, pollInterval); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("bundle %s did not finalize after %d attempts", bundleUUID, maxAttempts)
}

func sleepOrDone(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
