package sched

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ai-showcase-client/internal/infra/metrics"
)

// FetchFunc loads one query and writes the result wherever it belongs.
type FetchFunc func(ctx context.Context) error

type query struct {
	key      string
	fetch    FetchFunc
	interval time.Duration
	stale    chan struct{} // cap 1; pending invalidations coalesce
}

// QueryRefresher keeps keyed queries fresh. Every query is fetched once when Run
// starts, again on each Invalidate, and on its interval when one is set.
type QueryRefresher struct {
	mu      sync.RWMutex
	queries map[string]*query
	log     *zerolog.Logger
}

func NewQueryRefresher(logger *zerolog.Logger) *QueryRefresher {
	l := logger.With().Str("component", "QueryRefresher").Logger()
	return &QueryRefresher{queries: map[string]*query{}, log: &l}
}

// Register adds a query. interval <= 0 disables periodic refetch.
// Registering after Run has started has no effect on the running loop.
func (r *QueryRefresher) Register(key string, fetch FetchFunc, interval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries[key] = &query{key: key, fetch: fetch, interval: interval, stale: make(chan struct{}, 1)}
}

// Invalidate requests an immediate refetch of key. It never blocks.
func (r *QueryRefresher) Invalidate(key string) {
	r.mu.RLock()
	q, ok := r.queries[key]
	r.mu.RUnlock()
	if !ok {
		r.log.Debug().Str("query", key).Msg("invalidate: unknown query")
		return
	}
	select {
	case q.stale <- struct{}{}:
	default:
	}
}

// Run drives every registered query until ctx is cancelled.
func (r *QueryRefresher) Run(ctx context.Context) error {
	r.mu.RLock()
	qs := make([]*query, 0, len(r.queries))
	for _, q := range r.queries {
		qs = append(qs, q)
	}
	r.mu.RUnlock()

	r.log.Info().Int("queries", len(qs)).Msg("Starting query refresher")
	var wg sync.WaitGroup
	for _, q := range qs {
		wg.Add(1)
		go func(q *query) {
			defer wg.Done()
			r.loop(ctx, q)
		}(q)
	}
	wg.Wait()
	r.log.Info().Msg("Stopping query refresher")
	return ctx.Err()
}

func (r *QueryRefresher) loop(ctx context.Context, q *query) {
	var tick <-chan time.Time
	if q.interval > 0 {
		ticker := time.NewTicker(q.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	r.refresh(ctx, q, "initial")
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			r.refresh(ctx, q, "interval")
		case <-q.stale:
			r.refresh(ctx, q, "invalidate")
		}
	}
}

func (r *QueryRefresher) refresh(ctx context.Context, q *query, trigger string) {
	if err := q.fetch(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.IncQueryRefresh(q.key, trigger, "error")
		r.log.Warn().Err(err).Str("query", q.key).Str("trigger", trigger).Msg("query refresh failed")
		return
	}
	metrics.IncQueryRefresh(q.key, trigger, "ok")
	r.log.Debug().Str("query", q.key).Str("trigger", trigger).Msg("query refreshed")
}
