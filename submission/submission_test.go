package submission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/arbexec/bundlerelay"
	"github.com/luxfi/arbexec/httppool"
)

func testRelay(t *testing.T, handler http.HandlerFunc) *bundlerelay.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	pool, err := httppool.New(nil, httppool.RoundRobin, 5*time.Second)
	require.NoError(t, err)
	return bundlerelay.New(pool, srv.URL)
}

func TestReconcileBundleLandsAndFinalizes(t *testing.T) {
	calls := 0
	relay := testRelay(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		calls++

		switch req.Method {
		case "getInFlightBundleStatuses":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"jsonrpc": "2.0", "id": 1,
				"result": map[string]interface{}{
					"value": []map[string]string{{"bundle_id": "x", "status": "Landed"}},
				},
			})
		case "getBundleStatuses":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"jsonrpc": "2.0", "id": 1,
				"result": map[string]interface{}{
					"value": []map[string]interface{}{{
						"bundle_id":           "x",
						"confirmation_status": "finalized",
						"err":                 nil,
						"transactions":        []string{"sig123"},
					}},
				},
			})
		}
	})

	require := require.New(t)
	require.NoError(ReconcileBundle(context.Background(), relay, "x"))
	require.Equal(2, calls, "expected 2 relay calls")
}

func TestReconcileBundleFailsOnChainError(t *testing.T) {
	relay := testRelay(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		switch req.Method {
		case "getInFlightBundleStatuses":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"jsonrpc": "2.0", "id": 1,
				"result": map[string]interface{}{
					"value": []map[string]string{{"bundle_id": "x", "status": "Landed"}},
				},
			})
		case "getBundleStatuses":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"jsonrpc": "2.0", "id": 1,
				"result": map[string]interface{}{
					"value": []map[string]interface{}{{
						"bundle_id":           "x",
						"confirmation_status": "finalized",
						"err":                 map[string]interface{}{"InstructionError": []interface{}{4, map[string]int{"Custom": 6004}}},
					}},
				},
			})
		}
	})

	err := ReconcileBundle(context.Background(), relay, "x")
	require.Error(t, err, "expected error for on-chain failure")
}
