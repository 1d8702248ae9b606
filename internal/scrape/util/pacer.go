package util

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostPacer enforces a minimum interval between outbound requests to
// the same host. It is the politeness policy for the scraper: every
// request to the target site waits here first, whether it comes from a
// search fetch or a per-candidate detail fetch, and the pacing holds
// even when research runs for different items execute concurrently.
// A zero or negative interval disables pacing (used by tests).
type HostPacer struct {
	mu       sync.Mutex
	m        map[string]*rate.Limiter
	interval time.Duration
}

func NewHostPacer(minInterval time.Duration) *HostPacer {
	return &HostPacer{
		m:        make(map[string]*rate.Limiter),
		interval: minInterval,
	}
}

func (p *HostPacer) limiterFor(host string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if lim, ok := p.m[host]; ok {
		return lim
	}
	r := rate.Inf
	if p.interval > 0 {
		r = rate.Every(p.interval)
	}
	lim := rate.NewLimiter(r, 1)
	p.m[host] = lim
	return lim
}

// WaitURL blocks until a request to the URL's host is allowed.
func (p *HostPacer) WaitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return p.limiterFor("_").Wait(ctx)
	}
	return p.limiterFor(u.Host).Wait(ctx)
}
