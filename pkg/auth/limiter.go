package auth

import (
	"sync"

	"golang.org/x/time/rate"
)

// limiterPool holds one token bucket per caller, keyed by API key or
// client IP. Buckets are created lazily on first sight of a key and kept
// for the lifetime of the middleware.
type limiterPool struct {
	mu  sync.Mutex
	cfg SecConfig
	m   map[string]*rate.Limiter
}

func (p *limiterPool) Allow(caller string) bool {
	return p.get(caller).Allow()
}

func (p *limiterPool) get(caller string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m == nil {
		p.m = make(map[string]*rate.Limiter)
	}
	if l, ok := p.m[caller]; ok {
		return l
	}
	rps := p.cfg.RPS
	if rps <= 0 {
		rps = 5
	}
	burst := p.cfg.Burst
	if burst <= 0 {
		burst = 10
	}
	l := rate.NewLimiter(rate.Limit(rps), burst)
	p.m[caller] = l
	return l
}
