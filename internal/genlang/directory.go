package genlang

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ModelLister is the slice of Client the directory depends on.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// Directory resolves the priority-ordered pool of generation models.
//
// Discovery is lazy and the result is cached with a TTL so a provider-side
// deprecation is picked up without a restart. When discovery fails the
// fallback pool is served instead of failing the advisory request.
type Directory struct {
	lister   ModelLister
	patterns []string
	fallback []string
	ttl      time.Duration
	log      zerolog.Logger

	now func() time.Time

	mu        sync.Mutex
	pool      []string
	fetchedAt time.Time
}

func NewDirectory(lister ModelLister, patterns, fallback []string, ttl time.Duration, log zerolog.Logger) *Directory {
	return &Directory{
		lister:   lister,
		patterns: patterns,
		fallback: fallback,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// Pool returns the ranked model pool, never empty. The cached selection is
// reused until the TTL elapses or Invalidate is called.
func (d *Directory) Pool(ctx context.Context) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pool) > 0 && d.now().Sub(d.fetchedAt) < d.ttl {
		return d.pool
	}

	models, err := d.lister.ListModels(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("Model discovery failed, using fallback pool")
		if len(d.pool) > 0 {
			return d.pool // stale beats hard-coded when we had one
		}
		return d.fallback
	}

	pool := rank(models, d.patterns)
	if len(pool) == 0 {
		d.log.Warn().Msg("Provider reported no generation-capable models, using fallback pool")
		return d.fallback
	}

	d.pool = pool
	d.fetchedAt = d.now()
	d.log.Info().Strs("pool", pool).Msg("Model pool refreshed")
	return d.pool
}

// Invalidate drops the cached pool; the next Pool call re-discovers.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pool = nil
	d.fetchedAt = time.Time{}
}

// rank filters to generation-capable models and orders them by the first
// pattern their id matches; earlier patterns rank higher. Models matching
// no pattern go last, in listed order.
func rank(models []ModelInfo, patterns []string) []string {
	buckets := make([][]string, len(patterns)+1)
	for _, m := range models {
		if !m.SupportsGeneration() {
			continue
		}
		id := m.ID()
		slot := len(patterns)
		for i, p := range patterns {
			if strings.Contains(id, p) {
				slot = i
				break
			}
		}
		buckets[slot] = append(buckets[slot], id)
	}

	var pool []string
	for _, b := range buckets {
		pool = append(pool, b...)
	}
	return pool
}
