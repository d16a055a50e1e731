package aggregatorclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/arbexec/aggregatorapi"
	"github.com/luxfi/arbexec/httppool"
)

func testPool(t *testing.T) *httppool.Pool {
	t.Helper()
	pool, err := httppool.New(nil, httppool.RoundRobin, 5*time.Second)
	require.NoError(t, err)
	return pool
}

func TestQuoteSuccess(t *testing.T) {
	require := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal("/quote", r.URL.Path)
		json.NewEncoder(w).Encode(aggregatorapi.QuoteResponse{ContextSlot: 42})
	}))
	defer srv.Close()

	c := New(testPool(t), srv.URL, time.Second)
	out, err := c.Quote(context.Background(), aggregatorapi.QuoteRequest{InputMint: "a", OutputMint: "b", Amount: 1})
	require.NoError(err)
	require.EqualValues(42, out.ContextSlot)
}

func TestQuoteTooManyRequests(t *testing.T) {
	require := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(testPool(t), srv.URL, time.Second)
	_, err := c.Quote(context.Background(), aggregatorapi.QuoteRequest{})
	require.ErrorIs(err, ErrTooManyRequests)
}

func TestSwapInstructionsSuccess(t *testing.T) {
	require := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(http.MethodPost, r.Method)
		json.NewEncoder(w).Encode(aggregatorapi.SwapResponse{})
	}))
	defer srv.Close()

	c := New(testPool(t), srv.URL, time.Second)
	_, err := c.SwapInstructions(context.Background(), aggregatorapi.SwapRequest{})
	require.NoError(err)
}
