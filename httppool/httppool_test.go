package httppool

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewEmptyIPsSingleClient(t *testing.T) {
	require := require.New(t)
	p, err := New(nil, RoundRobin, time.Second)
	require.NoError(err)
	require.Len(p.clients, 1)
}

func TestRoundRobinCyclesAllClients(t *testing.T) {
	require := require.New(t)
	ips := []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("127.0.0.2"), net.ParseIP("127.0.0.3")}
	p, err := New(ips, RoundRobin, time.Second)
	require.NoError(err)

	var indices []int
	for i := 0; i < 6; i++ {
		indices = append(indices, p.selectIndex())
	}
	require.Equal([]int{0, 1, 2, 0, 1, 2}, indices)
}

func TestRandomNeverRepeatsImmediately(t *testing.T) {
	require := require.New(t)
	ips := []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("127.0.0.2")}
	p, err := New(ips, Random, time.Second)
	require.NoError(err)

	prev := -1
	for i := 0; i < 20; i++ {
		idx := p.selectIndex()
		require.NotEqual(prev, idx, "random selection repeated index %d consecutively", idx)
		prev = idx
	}
}

func TestParseIPs(t *testing.T) {
	require := require.New(t)
	ips, err := ParseIPs("127.0.0.1, 127.0.0.2")
	require.NoError(err)
	require.Len(ips, 2)

	_, err = ParseIPs("not-an-ip")
	require.Error(err, "expected error for invalid ip")
}
