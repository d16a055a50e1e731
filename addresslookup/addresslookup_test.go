package addresslookup

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func buildTestAccount(addrs ...solana.PublicKey) []byte {
	data := make([]byte, metadataLen+32*len(addrs))
	binary.LittleEndian.PutUint32(data[0:4], 1)
	for i, a := range addrs {
		copy(data[metadataLen+i*32:], a[:])
	}
	return data
}

func TestDecode(t *testing.T) {
	require := require.New(t)
	a1 := solana.NewWallet().PublicKey()
	a2 := solana.NewWallet().PublicKey()
	data := buildTestAccount(a1, a2)

	key := solana.NewWallet().PublicKey()
	table, err := Decode(key, data)
	require.NoError(err)
	require.Len(table.Addresses, 2)
	require.Equal(a1, table.Addresses[0])
	require.Equal(a2, table.Addresses[1])
}

func TestDecodeTooShort(t *testing.T) {
	_, err := Decode(solana.PublicKey{}, make([]byte, 10))
	require.Error(t, err)
}

func TestDecodeBadDiscriminator(t *testing.T) {
	data := make([]byte, metadataLen)
	binary.LittleEndian.PutUint32(data[0:4], 99)
	_, err := Decode(solana.PublicKey{}, data)
	require.Error(t, err)
}
