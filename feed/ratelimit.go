package feed

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/kindlefeed"
	"golang.org/x/time/rate"
)

// DefaultHostInterval is the pause between two fetches from one host.
const DefaultHostInterval = time.Second

var _ kindlefeed.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces out fetches to the same host. Saved links tend to
// cluster on a few blogs; www.example.com and example.com share a slot.
type DomainLimiter struct {
	mu    sync.Mutex
	hosts map[string]*rate.Limiter
	every rate.Limit
}

// NewDomainLimiter returns a limiter allowing one fetch per interval to
// each host.
func NewDomainLimiter(interval time.Duration) *DomainLimiter {
	return &DomainLimiter{
		hosts: make(map[string]*rate.Limiter),
		every: rate.Every(interval),
	}
}

// Wait blocks until host may be fetched again or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	key := strings.TrimPrefix(strings.ToLower(host), "www.")

	d.mu.Lock()
	l, ok := d.hosts[key]
	if !ok {
		l = rate.NewLimiter(d.every, 1)
		d.hosts[key] = l
	}
	d.mu.Unlock()

	return l.Wait(ctx)
}
