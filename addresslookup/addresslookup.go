// Package addresslookup decodes on-chain Address Lookup Table accounts
// and loads them via RPC. solana-go has no ALT decoder, so this follows
// the documented account layout directly the way
// original_source/src/engine.rs's load_alt_accounts does against
// solana_program::address_lookup_table::state::AddressLookupTable.
package addresslookup

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// metadataLen is the size of the fixed ALT account header: a 4-byte
// discriminator followed by deactivation slot (8), last extended slot (8),
// last extended slot start index (1), an Option<Pubkey> authority
// discriminant + pubkey (33), and padding (2). Addresses start right after.
const metadataLen = 56

// Table is a decoded Address Lookup Table account: its own address plus
// the ordered list of pubkeys it resolves indices against.
type Table struct {
	Key       solana.PublicKey
	Addresses []solana.PublicKey
}

// Decode parses the raw account data of an Address Lookup Table account.
func Decode(key solana.PublicKey, data []byte) (*Table, error) {
	if len(data) < metadataLen {
		return nil, fmt.Errorf("address lookup table account too short: %d bytes", len(data))
	}

	discriminator := binary.LittleEndian.Uint32(data[0:4])
	if discriminator != 1 {
		return nil, fmt.Errorf("unexpected address lookup table discriminator %d", discriminator)
	}

	body := data[metadataLen:]
	if len(body)%32 != 0 {
		return nil, fmt.Errorf("address lookup table body length %d not a multiple of 32", len(body))
	}

	addrs := make([]solana.PublicKey, 0, len(body)/32)
	for off := 0; off+32 <= len(body); off += 32 {
		var pk solana.PublicKey
		copy(pk[:], body[off:off+32])
		addrs = append(addrs, pk)
	}

	return &Table{Key: key, Addresses: addrs}, nil
}

// Load fetches and decodes one or more ALT accounts by address, one after
// another. The first address that fails to parse, fetch or decode aborts
// the whole call with an error; no partial result is returned.
func Load(ctx context.Context, client *rpc.Client, addresses []string) ([]*solana.AddressLookupTableAccount, error) {
	tables := make([]*solana.AddressLookupTableAccount, 0, len(addresses))

	for _, addr := range addresses {
		key, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid address lookup table key %q: %w", addr, err)
		}

		info, err := client.GetAccountInfo(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("fetch address lookup table %s: %w", addr, err)
		}

		table, err := Decode(key, info.Value.Data.GetBinary())
		if err != nil {
			return nil, fmt.Errorf("decode address lookup table %s: %w", addr, err)
		}

		tables = append(tables, &solana.AddressLookupTableAccount{
			Key:       table.Key,
			Addresses: table.Addresses,
		})
	}

	return tables, nil
}
