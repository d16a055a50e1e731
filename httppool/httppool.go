// Package httppool provides a pool of *http.Client values pre-bound to
// specific egress IPv4 addresses, selected by round-robin or
// last-excluded-random policy. It is the Go shape of
// original_source/src/http_client.rs's HttpClient: operators running
// several public IPs on one box spread outbound quote/submission traffic
// across them to dodge per-IP rate limits.
package httppool

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Algorithm selects which bound client to hand out on each call.
type Algorithm int

const (
	RoundRobin Algorithm = iota
	Random
)

// Pool hands out *http.Client values bound to a fixed set of local
// addresses. With zero addresses it degrades to a single default client.
type Pool struct {
	clients   []*http.Client
	algorithm Algorithm

	mu            sync.Mutex
	roundRobinIdx int
	lastRandomIdx int // -1 means "none yet"
}

// New builds a Pool. An empty ips dials out from whatever the OS picks.
func New(ips []net.IP, algorithm Algorithm, timeout time.Duration) (*Pool, error) {
	p := &Pool{algorithm: algorithm, lastRandomIdx: -1}

	if len(ips) == 0 {
		p.clients = []*http.Client{newClient(nil, timeout)}
		return p, nil
	}

	p.clients = make([]*http.Client, 0, len(ips))
	for _, ip := range ips {
		addr := &net.TCPAddr{IP: ip}
		p.clients = append(p.clients, newClient(addr, timeout))
	}
	return p, nil
}

func newClient(local *net.TCPAddr, timeout time.Duration) *http.Client {
	dialer := &net.Dialer{LocalAddr: local, Timeout: 30 * time.Second}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// Get returns the next client per the pool's selection algorithm.
func (p *Pool) Get() *http.Client {
	switch len(p.clients) {
	case 0:
		panic("httppool: empty pool") // New never constructs one this way
	case 1:
		return p.clients[0]
	default:
		return p.clients[p.selectIndex()]
	}
}

func (p *Pool) selectIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.algorithm {
	case RoundRobin:
		idx := p.roundRobinIdx
		p.roundRobinIdx = (p.roundRobinIdx + 1) % len(p.clients)
		return idx
	default: // Random, excluding the previous pick when possible
		candidates := make([]int, 0, len(p.clients)-1)
		for i := range p.clients {
			if i != p.lastRandomIdx {
				candidates = append(candidates, i)
			}
		}
		var selected int
		if len(candidates) == 0 {
			selected = rand.Intn(len(p.clients))
		} else {
			selected = candidates[rand.Intn(len(candidates))]
		}
		p.lastRandomIdx = selected
		return selected
	}
}

// ParseIPs converts a comma-separated ips config string (spec.md §6's
// `ips` field) into a slice of net.IP, rejecting anything unparsable.
func ParseIPs(raw string) ([]net.IP, error) {
	if raw == "" {
		return nil, nil
	}
	var out []net.IP
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ip := net.ParseIP(part)
		if ip == nil || ip.To4() == nil {
			return nil, fmt.Errorf("invalid IPv4 address %q", part)
		}
		out = append(out, ip.To4())
	}
	return out, nil
}

// Do executes req against a pool-selected client, honoring ctx cancellation.
func (p *Pool) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	client := p.Get()
	return client.Do(req.WithContext(ctx))
}
