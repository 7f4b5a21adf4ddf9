// Package fx resolves point-in-time exchange rates for converting
// statement values from a company's financial currency into its trade
// currency. Rates are cached per currency pair with a bounded TTL; cache
// population is serialized so concurrent lookups of the same pair cause a
// single external call.
package fx

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultTTL is the rate cache lifetime. Exchange rates drift slowly
// enough that an hour-old quote is acceptable for statement conversion.
const DefaultTTL = time.Hour

// QuoteSource fetches a current exchange rate from an external provider.
// Implementations apply their own timeout and return an error on any
// failure; the resolver treats every error as "rate unavailable".
type QuoteSource interface {
	Quote(ctx context.Context, from, to string) (float64, error)
}

type cacheEntry struct {
	rate      float64
	expiresAt time.Time
}

// Resolver is the process-wide exchange rate resolver.
type Resolver struct {
	source  QuoteSource
	ttl     time.Duration
	limiter *rate.Limiter
	now     func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithTTL overrides the cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) { r.ttl = ttl }
}

// WithClock injects a clock, used by tests to exercise TTL expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithLimiter overrides the quote source request budget.
func WithLimiter(l *rate.Limiter) Option {
	return func(r *Resolver) { r.limiter = l }
}

// NewResolver creates a resolver over the given quote source.
func NewResolver(source QuoteSource, opts ...Option) *Resolver {
	r := &Resolver{
		source:  source,
		ttl:     DefaultTTL,
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		now:     time.Now,
		cache:   make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rate returns the exchange rate from one currency to another, or nil when
// no rate can be resolved. Same-currency pairs resolve to 1.0 without an
// external call and are never cached. Failed lookups are not cached, so
// the next call retries.
func (r *Resolver) Rate(ctx context.Context, from, to string) *float64 {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return nil
	}
	if from == to {
		one := 1.0
		return &one
	}

	key := from + "/" + to

	r.mu.RLock()
	entry, ok := r.cache[key]
	r.mu.RUnlock()
	if ok && r.now().Before(entry.expiresAt) {
		v := entry.rate
		return &v
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock: another caller may have populated the
	// pair while we waited.
	if entry, ok := r.cache[key]; ok && r.now().Before(entry.expiresAt) {
		v := entry.rate
		return &v
	}

	if err := r.limiter.Wait(ctx); err != nil {
		log.Warn().Err(err).Str("pair", key).Msg("fx rate lookup aborted")
		return nil
	}

	quoted, err := r.source.Quote(ctx, from, to)
	if err != nil {
		log.Warn().Err(err).Str("pair", key).Msg("fx rate unavailable; conversion will be skipped")
		return nil
	}
	if quoted <= 0 {
		log.Warn().Float64("rate", quoted).Str("pair", key).Msg("ignoring non-positive fx rate")
		return nil
	}

	r.cache[key] = cacheEntry{rate: quoted, expiresAt: r.now().Add(r.ttl)}
	return &quoted
}
