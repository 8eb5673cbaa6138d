package ratelimit

import (
    "sync"
    "time"

    "golang.org/x/time/rate"
)

type entry struct {
    lim  *rate.Limiter
    seen time.Time
}

// Limiter keeps one token bucket per key (client IP for the scan trigger).
type Limiter struct {
    mu    sync.Mutex
    m     map[string]*entry
    every time.Duration
    burst int
    idle  time.Duration
    now   func() time.Time
}

// New allows burst requests per key, refilled at one token per every.
func New(every time.Duration, burst int) *Limiter {
    if burst < 1 {
        burst = 1
    }
    return &Limiter{
        m:     make(map[string]*entry),
        every: every,
        burst: burst,
        idle:  10 * time.Minute,
        now:   time.Now,
    }
}

// Allow returns true if one token can be consumed for key. A zero interval disables limiting.
func (l *Limiter) Allow(key string) bool {
    if l.every <= 0 {
        return true
    }
    now := l.now()
    l.mu.Lock()
    defer l.mu.Unlock()

    e, ok := l.m[key]
    if !ok {
        e = &entry{lim: rate.NewLimiter(rate.Every(l.every), l.burst)}
        l.m[key] = e
    }
    e.seen = now
    allowed := e.lim.AllowN(now, 1)
    l.sweep(now)
    return allowed
}

// sweep drops keys idle for longer than l.idle. Caller holds l.mu.
func (l *Limiter) sweep(now time.Time) {
    if len(l.m) < 256 {
        return
    }
    for k, e := range l.m {
        if now.Sub(e.seen) > l.idle {
            delete(l.m, k)
        }
    }
}
