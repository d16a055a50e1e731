package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/arbexec/aggregatorapi"
	"github.com/luxfi/arbexec/aggregatorclient"
	"github.com/luxfi/arbexec/config"
	"github.com/luxfi/arbexec/httppool"
)

func testEngine(t *testing.T, outAmounts map[string]string) *Engine {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in := r.URL.Query().Get("inputMint")
		json.NewEncoder(w).Encode(aggregatorapi.QuoteResponse{OutAmount: outAmounts[in]})
	}))
	t.Cleanup(srv.Close)

	pool, err := httppool.New(nil, httppool.RoundRobin, time.Second)
	require.NoError(t, err)

	return &Engine{
		cfg: &config.Config{
			Swap: config.SwapConfig{
				InputMint:   "IN",
				OutputMint:  "OUT",
				InputAmount: 1_000_000_000,
				SlippageBps: 50,
			},
			MinProfitThresholdAmount: 8_000_000,
		},
		agg:    aggregatorclient.New(pool, srv.URL, time.Second),
		swapCh: make(chan aggregatorapi.SwapData, swapChannelCapacity),
	}
}

func TestRunOnceDispatchesProfitableOpportunity(t *testing.T) {
	require := require.New(t)
	e := testEngine(t, map[string]string{
		"IN":  "2000000000", // leg1: IN -> OUT, out_amount irrelevant to profit calc directly
		"OUT": "1100000000", // leg2: OUT -> IN, out_amount used as the final balance
	})

	require.NoError(e.RunOnce(context.Background()))

	select {
	case <-e.swapCh:
	default:
		t.Fatal("expected a profitable opportunity to be queued")
	}
}

func TestRunOnceSkipsUnprofitable(t *testing.T) {
	require := require.New(t)
	e := testEngine(t, map[string]string{
		"IN":  "2000000000",
		"OUT": "900000000", // less than input_amount, no profit
	})

	require.NoError(e.RunOnce(context.Background()))

	select {
	case <-e.swapCh:
		t.Fatal("did not expect an opportunity to be queued")
	default:
	}
}

func TestLegLabel(t *testing.T) {
	require := require.New(t)
	require.Equal("out", legLabel("IN", "IN"))
	require.Equal("return", legLabel("IN", "OUT"))
}
