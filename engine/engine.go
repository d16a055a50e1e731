// Package engine drives the core arbitrage cycle: quote one leg, quote
// the return leg, decide whether the round trip clears the configured
// profit threshold, and hand qualifying opportunities off to a
// background worker pool that builds and submits the fused transaction.
// Grounded on original_source/src/engine.rs's Engine/run/daemon_processor.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/arbexec/addresslookup"
	"github.com/luxfi/arbexec/aggregatorapi"
	"github.com/luxfi/arbexec/aggregatorclient"
	"github.com/luxfi/arbexec/arbutil"
	"github.com/luxfi/arbexec/blockhash"
	"github.com/luxfi/arbexec/bundlerelay"
	"github.com/luxfi/arbexec/config"
	"github.com/luxfi/arbexec/httppool"
	"github.com/luxfi/arbexec/metrics"
	"github.com/luxfi/arbexec/submission"
	"github.com/luxfi/arbexec/txbuilder"
	"github.com/luxfi/arbexec/xlog"
)

const swapChannelCapacity = 100
const bundleReconcileChannelCapacity = 1000

var log = xlog.New("engine")

// Engine holds every long-lived dependency the arbitrage cycle needs.
type Engine struct {
	cfg       *config.Config
	payer     solana.PrivateKey
	rpcClient *rpc.Client
	agg       *aggregatorclient.Client
	relay     *bundlerelay.Client
	bh        *blockhash.Cache

	swapCh chan aggregatorapi.SwapData
}

// New wires up an Engine: parses the egress IP pool, connects to the
// configured RPC endpoint, validates the wallet and both swap mints, and
// launches the background blockhash refresh and transaction worker pool.
func New(ctx context.Context, cfg *config.Config) (*Engine, error) {
	payer, err := config.LoadKeypair(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("load keypair: %w", err)
	}

	ips, err := httppool.ParseIPs(cfg.IPs)
	if err != nil {
		return nil, fmt.Errorf("parse ips: %w", err)
	}
	pool, err := httppool.New(ips, httppool.RoundRobin, cfg.HTTPRequestTimeout())
	if err != nil {
		return nil, fmt.Errorf("build http pool: %w", err)
	}

	rpcClient := rpc.New(cfg.RPCEndpoint)

	if err := validateMint(ctx, rpcClient, cfg.Swap.InputMint); err != nil {
		return nil, fmt.Errorf("INPUT_MINT invalid: %w", err)
	}
	if err := validateMint(ctx, rpcClient, cfg.Swap.OutputMint); err != nil {
		return nil, fmt.Errorf("OUTPUT_MINT invalid: %w", err)
	}

	balance, err := rpcClient.GetBalance(ctx, payer.PublicKey(), rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	if !cfg.SimulateTransaction && balance.Value == 0 {
		return nil, fmt.Errorf("wallet %s has zero balance", payer.PublicKey())
	}

	log.Info("configuration loaded",
		"wallet", payer.PublicKey().String(),
		"balance", balance.Value,
		"inputMint", cfg.Swap.InputMint,
		"outputMint", cfg.Swap.OutputMint,
		"inputAmount", cfg.Swap.InputAmount,
		"slippageBps", cfg.Swap.SlippageBps,
		"rpcEndpoint", cfg.RPCEndpoint,
		"bundleSubmit", cfg.Jito.BundleSubmit,
	)

	var relay *bundlerelay.Client
	if cfg.Jito.BundleSubmit {
		relayPool := pool
		if cfg.IPs != "" {
			var err error
			relayPool, err = httppool.New(ips, httppool.Random, cfg.HTTPRequestTimeout())
			if err != nil {
				return nil, fmt.Errorf("build relay http pool: %w", err)
			}
		}
		relay = bundlerelay.New(relayPool, cfg.Jito.RPCEndpoint)
	}

	e := &Engine{
		cfg:       cfg,
		payer:     payer,
		rpcClient: rpcClient,
		agg:       aggregatorclient.New(pool, cfg.JupV6APIBaseURL, cfg.HTTPRequestTimeout()),
		relay:     relay,
		bh:        blockhash.Start(ctx, rpcClient),
		swapCh:    make(chan aggregatorapi.SwapData, swapChannelCapacity),
	}

	go e.daemonProcessor(ctx)

	return e, nil
}

func validateMint(ctx context.Context, client *rpc.Client, mint string) error {
	pubkey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return fmt.Errorf("invalid mint address %q: %w", mint, err)
	}
	if _, err := client.GetAccountInfo(ctx, pubkey); err != nil {
		return fmt.Errorf("mint account %s not found: %w", mint, err)
	}
	return nil
}

// RunOnce executes one quote-compare-dispatch cycle: quote leg one,
// quote the return leg, and if the round trip clears the profit
// threshold hand it to the background worker pool. It mirrors
// original_source/src/engine.rs's Engine::run, wrapping the first quote
// in the same exponential-backoff policy for 429 responses.
func (e *Engine) RunOnce(ctx context.Context) error {
	swap := e.cfg.Swap
	start := time.Now()

	quote1, err := e.quoteWithBackoff(ctx, swap.InputMint, swap.OutputMint, swap.InputAmount, swap.SlippageBps)
	if err != nil {
		return fmt.Errorf("quote leg 1: %w", err)
	}

	quote2InAmount, err := strconv.ParseUint(quote1.OutAmount, 10, 64)
	if err != nil {
		return fmt.Errorf("parse leg 1 out amount: %w", err)
	}

	quote2, err := e.quote(ctx, swap.OutputMint, swap.InputMint, quote2InAmount, swap.SlippageBps)
	if err != nil {
		log.Error("request quote error", "err", err)
		return nil
	}

	quote2OutAmount, err := strconv.ParseUint(quote2.OutAmount, 10, 64)
	if err != nil {
		return fmt.Errorf("parse leg 2 out amount: %w", err)
	}

	elapsed := time.Since(start)
	log.Debug("quote round trip complete", "elapsed", elapsed)

	if arbutil.LatencyTooHigh(elapsed, e.cfg.MaxLatency()) {
		log.Debug("request latency too high, ignoring cycle", "elapsed", elapsed, "maxLatency", e.cfg.MaxLatency())
		metrics.OpportunitiesSkipped.WithLabelValues("latency").Inc()
		return nil
	}

	diff := int64(quote2OutAmount) - int64(swap.InputAmount)
	profitable := diff > 0 && uint64(diff) > e.cfg.MinProfitThresholdAmount
	log.Debug("profit check", "diff", diff, "threshold", e.cfg.MinProfitThresholdAmount, "profitable", profitable)

	if !profitable {
		return nil
	}

	metrics.OpportunitiesFound.Inc()
	log.Info("profitable opportunity found", "diff", diff, "sol", float64(diff)/1e9)

	if e.cfg.Jito.BundleSubmit {
		tip := arbutil.CalculateTip(diff, e.cfg.Jito.TipRateEnabled, e.cfg.Jito.TipRate, e.cfg.Jito.MinTipAmount, e.cfg.Jito.MaxTipAmount, e.cfg.Jito.FixedTipAmount)
		if diff <= tip {
			log.Debug("net profit too low after tip, skipping", "diff", diff, "tip", tip)
			metrics.OpportunitiesSkipped.WithLabelValues("tip_exceeds_profit").Inc()
			return nil
		}
	} else {
		fee := int64(e.cfg.PrioritizationFeeLamports)
		if diff <= fee {
			log.Debug("net profit too low after priority fee, skipping", "diff", diff, "fee", fee)
			metrics.OpportunitiesSkipped.WithLabelValues("fee_exceeds_profit").Inc()
			return nil
		}
	}

	select {
	case e.swapCh <- aggregatorapi.SwapData{Data1: *quote1, Data2: *quote2, Profit: diff}:
		metrics.SwapChannelDepth.Set(float64(len(e.swapCh)))
	default:
		log.Warn("swap channel full, dropping opportunity")
		metrics.OpportunitiesSkipped.WithLabelValues("channel_full").Inc()
	}

	return nil
}

func (e *Engine) quote(ctx context.Context, inputMint, outputMint string, amount, slippageBps uint64) (*aggregatorapi.QuoteResponse, error) {
	start := time.Now()
	leg := legLabel(e.cfg.Swap.InputMint, inputMint)
	resp, err := e.agg.Quote(ctx, aggregatorapi.QuoteRequest{
		InputMint:    inputMint,
		OutputMint:   outputMint,
		Amount:       amount,
		SlippageBps:  slippageBps,
		Dexes:        e.cfg.Swap.Dexes,
		ExcludeDexes: e.cfg.Swap.ExcludeDexes,
	})
	metrics.QuoteLatency.WithLabelValues(leg).Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.QuotesFetched.WithLabelValues(leg).Inc()
	}
	return resp, err
}

func legLabel(configuredInputMint, inputMint string) string {
	if inputMint == configuredInputMint {
		return "out"
	}
	return "return"
}

// quoteWithBackoff retries the first leg's quote under the same
// exponential backoff policy original_source/src/engine.rs applies:
// 5s initial interval, 1.5x multiplier, 60s cap, 5 minute ceiling,
// triggered specifically by 429 responses from the aggregator.
func (e *Engine) quoteWithBackoff(ctx context.Context, inputMint, outputMint string, amount, slippageBps uint64) (*aggregatorapi.QuoteResponse, error) {
	op := func() (*aggregatorapi.QuoteResponse, error) {
		resp, err := e.quote(ctx, inputMint, outputMint, amount, slippageBps)
		if err != nil {
			log.Error("request quote error", "err", err)
			if errors.Is(err, aggregatorclient.ErrTooManyRequests) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Second
	bo.Multiplier = 1.5
	bo.MaxInterval = 60 * time.Second

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxElapsedTime(5*time.Minute),
	)
}

// daemonProcessor drains the swap-data channel, spawning one goroutine
// per opportunity to build and submit its transaction without blocking
// the quote loop.
func (e *Engine) daemonProcessor(ctx context.Context) {
	bundleStatusCh := make(chan string, bundleReconcileChannelCapacity)

	if e.cfg.Jito.BundleSubmit && e.cfg.Jito.BundleStatusesChecking {
		go e.reconcileLoop(ctx, bundleStatusCh)
	}

	for {
		select {
		case data, ok := <-e.swapCh:
			if !ok {
				return
			}
			metrics.SwapChannelDepth.Set(float64(len(e.swapCh)))
			go e.handleOpportunity(ctx, data, bundleStatusCh)
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) reconcileLoop(ctx context.Context, bundleStatusCh <-chan string) {
	for {
		select {
		case uuid := <-bundleStatusCh:
			go func(uuid string) {
				if err := submission.ReconcileBundle(ctx, e.relay, uuid); err != nil {
					log.Warn("bundle reconciliation failed", "uuid", uuid, "err", err)
				} else {
					log.Info("bundle reconciled", "uuid", uuid)
				}
			}(uuid)
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) handleOpportunity(ctx context.Context, data aggregatorapi.SwapData, bundleStatusCh chan<- string) {
	start := time.Now()
	defer func() {
		log.Debug("transaction handling elapsed", "elapsed", time.Since(start))
	}()

	tx, err := e.buildTransaction(ctx, data)
	if err != nil {
		log.Error("build transaction failed", "err", err)
		return
	}

	if e.cfg.SimulateTransaction {
		e.simulate(ctx, tx)
		return
	}

	if e.cfg.Jito.BundleSubmit {
		uuid, err := submission.SubmitBundle(ctx, e.relay, tx)
		if err != nil {
			metrics.TransactionsSubmitted.WithLabelValues("bundle", "error").Inc()
			log.Error("submit bundle failed", "err", err)
			return
		}
		metrics.TransactionsSubmitted.WithLabelValues("bundle", "submitted").Inc()
		if e.cfg.Jito.BundleStatusesChecking {
			select {
			case bundleStatusCh <- uuid:
			default:
				log.Warn("bundle reconcile channel full, dropping", "uuid", uuid)
			}
		}
		return
	}

	sig, err := submission.SubmitOrdinary(ctx, e.rpcClient, tx, e.cfg.SkipPreflight)
	if err != nil {
		metrics.TransactionsSubmitted.WithLabelValues("rpc", "error").Inc()
		log.Error("submit transaction failed", "err", err)
		return
	}
	metrics.TransactionsSubmitted.WithLabelValues("rpc", "submitted").Inc()
	log.Info("transaction submitted", "signature", sig.String())
}

func (e *Engine) buildTransaction(ctx context.Context, data aggregatorapi.SwapData) (*solana.Transaction, error) {
	wrapAndUnwrap := e.cfg.Swap.WrapAndUnwrapSol
	swapReq1 := e.swapRequest(data.Data1, &wrapAndUnwrap)
	swapReq2 := e.swapRequest(data.Data2, &wrapAndUnwrap)

	var leg1, leg2 *aggregatorapi.SwapResponse
	fetchGroup, fetchCtx := errgroup.WithContext(ctx)
	fetchGroup.Go(func() error {
		var err error
		leg1, err = e.agg.SwapInstructions(fetchCtx, swapReq1)
		if err != nil {
			return fmt.Errorf("fetch leg1 swap instructions: %w", err)
		}
		return nil
	})
	fetchGroup.Go(func() error {
		var err error
		leg2, err = e.agg.SwapInstructions(fetchCtx, swapReq2)
		if err != nil {
			return fmt.Errorf("fetch leg2 swap instructions: %w", err)
		}
		return nil
	})
	if err := fetchGroup.Wait(); err != nil {
		return nil, err
	}

	var alts1, alts2 []*solana.AddressLookupTableAccount
	var currentBalance uint64
	altGroup, altCtx := errgroup.WithContext(ctx)
	altGroup.Go(func() error {
		var err error
		alts1, err = addresslookup.Load(altCtx, e.rpcClient, leg1.AddressLookupTableAddresses)
		if err != nil {
			return fmt.Errorf("load leg1 address lookup tables: %w", err)
		}
		return nil
	})
	altGroup.Go(func() error {
		var err error
		alts2, err = addresslookup.Load(altCtx, e.rpcClient, leg2.AddressLookupTableAddresses)
		if err != nil {
			return fmt.Errorf("load leg2 address lookup tables: %w", err)
		}
		return nil
	})
	altGroup.Go(func() error {
		var err error
		currentBalance, err = txbuilder.CurrentBalance(altCtx, e.rpcClient, e.payer.PublicKey())
		if err != nil {
			return fmt.Errorf("get current balance: %w", err)
		}
		return nil
	})
	if err := altGroup.Wait(); err != nil {
		return nil, err
	}

	plan := txbuilder.Plan{
		Payer:           e.payer,
		UserPubkey:      e.payer.PublicKey(),
		Leg1:            *leg1,
		Leg2:            *leg2,
		ALTs:            append(alts1, alts2...),
		RecentBlockhash: e.bh.Get(),
		MinProfitAmount: e.cfg.MinProfitAmount,
		CurrentBalance:  currentBalance,
		BundleSubmit:    e.cfg.Jito.BundleSubmit,
	}

	if e.cfg.Jito.BundleSubmit {
		tipAccount, err := arbutil.RandomTipAccount()
		if err != nil {
			return nil, err
		}
		plan.TipAccount = tipAccount
		tip := arbutil.CalculateTip(data.Profit, e.cfg.Jito.TipRateEnabled, e.cfg.Jito.TipRate, e.cfg.Jito.MinTipAmount, e.cfg.Jito.MaxTipAmount, e.cfg.Jito.FixedTipAmount)
		plan.TipAmountLamports = uint64(tip)
	}

	return txbuilder.Build(plan)
}

func (e *Engine) swapRequest(quote aggregatorapi.QuoteResponse, wrapAndUnwrap *bool) aggregatorapi.SwapRequest {
	req := aggregatorapi.SwapRequest{
		QuoteResponse:    quote,
		UserPublicKey:    e.payer.PublicKey().String(),
		Payer:            e.payer.PublicKey().String(),
		WrapAndUnwrapSol: wrapAndUnwrap,
	}
	if !e.cfg.Jito.BundleSubmit {
		priorityLevel := "high"
		req.PrioritizationFeeLamports = &aggregatorapi.PrioritizationFeeLamports{
			PriorityLevelWithMaxLamports: &aggregatorapi.PriorityLevelWithMaxLamports{
				PriorityLevel: priorityLevel,
				MaxLamports:   e.cfg.PrioritizationFeeLamports,
			},
		}
	}
	return req
}

func (e *Engine) simulate(ctx context.Context, tx *solana.Transaction) {
	result, err := e.rpcClient.SimulateTransaction(ctx, tx)
	if err != nil {
		log.Error("simulate transaction failed", "err", err)
		return
	}
	if result.Value.Err != nil {
		log.Error("simulate transaction reported an error", "err", result.Value.Err)
		return
	}
	log.Info("simulate transaction succeeded", "unitsConsumed", result.Value.UnitsConsumed)
}
