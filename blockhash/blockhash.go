// Package blockhash keeps a recent blockhash cached in memory, refreshed
// on a ticker rather than fetched inline before every transaction build.
// Grounded on original_source/src/blockhash.rs's LatestBlockhash, with the
// refresh-loop idiom carried from the teacher's validator-set ticker.
package blockhash

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/luxfi/arbexec/xlog"
)

const refreshInterval = 2 * time.Second

// entry is the value swapped atomically on each refresh.
type entry struct {
	hash solana.Hash
	slot uint64
}

// Cache serves the latest confirmed blockhash without blocking callers on
// an RPC round trip.
type Cache struct {
	client *rpc.Client
	value  atomic.Pointer[entry]
	log    interface {
		Warn(string, ...interface{})
	}
}

// Start launches the background refresh loop and returns once the first
// fetch has completed (or failed once and logged), mirroring the Rust
// version's tokio::spawn pattern but waiting for a warm cache up front.
func Start(ctx context.Context, client *rpc.Client) *Cache {
	c := &Cache{client: client, log: xlog.New("blockhash")}
	c.value.Store(&entry{})

	c.refresh(ctx)

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.refresh(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	return c
}

func (c *Cache) refresh(ctx context.Context) {
	out, err := c.client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		c.log.Warn("blockhash refresh failed", "err", err)
		return
	}
	c.value.Store(&entry{hash: out.Value.Blockhash, slot: out.Context.Slot})
}

// Get returns the most recently cached blockhash. Before the first
// successful refresh this is the zero hash.
func (c *Cache) Get() solana.Hash {
	return c.value.Load().hash
}

// Slot returns the slot the cached blockhash was observed at.
func (c *Cache) Slot() uint64 {
	return c.value.Load().slot
}
