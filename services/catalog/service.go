// Package catalog runs every registered source adapter concurrently and
// merges their output into one canonical catalog, isolating each source's
// failure so a single bad venue can never abort the batch.
package catalog

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"cinescout/cache"
	"cinescout/models"
	"cinescout/services/sources"
)

// defaultSourceTimeout bounds one source's whole fetch. A venue that never
// responds is recorded as failed like any other error; it must not stall the
// run.
const defaultSourceTimeout = 60 * time.Second

type sourceOutcome struct {
	screenings []models.Screening
	err        error
}

// RunAll invokes every source concurrently and collects, per source, either
// its screenings or its failure. Failures — errors, timeouts, panics — are
// recorded in the breakdown and never re-thrown; RunAll itself always
// completes. The merged catalog is the union of each source's own output
// order; no cross-source deduplication is performed (venues are assumed
// exclusive to one source).
func RunAll(ctx context.Context, srcs []sources.Source, sourceTimeout time.Duration) models.RunResult {
	if sourceTimeout <= 0 {
		sourceTimeout = defaultSourceTimeout
	}

	runID := uuid.NewString()
	started := time.Now()
	outcomes := make([]sourceOutcome, len(srcs))

	workers := pool.New()
	for i, src := range srcs {
		workers.Go(func() {
			outcomes[i] = fetchIsolated(ctx, src, sourceTimeout)
		})
	}
	workers.Wait()

	result := models.RunResult{
		RunID:      runID,
		Screenings: []models.Screening{},
		Breakdown:  make([]models.SourceBreakdownEntry, 0, len(srcs)),
	}
	var failed int
	for i, src := range srcs {
		out := outcomes[i]
		if out.err != nil {
			failed++
			log.Printf("[catalog] source %s failed: %v", src.Name(), out.err)
			result.Breakdown = append(result.Breakdown, models.SourceBreakdownEntry{
				Name:  src.Name(),
				Count: 0,
				Error: out.err.Error(),
			})
			continue
		}
		result.Screenings = append(result.Screenings, out.screenings...)
		result.Breakdown = append(result.Breakdown, models.SourceBreakdownEntry{
			Name:  src.Name(),
			Count: len(out.screenings),
		})
	}

	result.DurationMs = time.Since(started).Milliseconds()
	log.Printf("[catalog] run %s: %d sources (%d failed), %d screenings, %dms",
		runID, len(srcs), failed, len(result.Screenings), result.DurationMs)
	return result
}

// fetchIsolated runs one source under its own timeout and converts panics
// into recorded failures. Nothing escapes the per-source boundary.
func fetchIsolated(ctx context.Context, src sources.Source, timeout time.Duration) (out sourceOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = sourceOutcome{err: fmt.Errorf("panic: %v", r)}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	screenings, err := src.Fetch(ctx)
	if err != nil {
		return sourceOutcome{err: err}
	}
	return sourceOutcome{screenings: screenings}
}

// Service is the cache-backed catalog: Run serves each source from the TTL
// store when fresh, fetching only on misses; Refresh wipes the store first.
type Service struct {
	registry      *sources.Registry
	client        *http.Client
	store         *cache.Store[[]models.Screening]
	sourceTimeout time.Duration
	enabled       []string
}

// NewService wires the catalog. enabled limits the run to the named sources;
// empty means every registered source.
func NewService(registry *sources.Registry, client *http.Client, store *cache.Store[[]models.Screening], sourceTimeout time.Duration, enabled []string) *Service {
	if registry == nil {
		registry = sources.DefaultRegistry
	}
	if store == nil {
		store = cache.New[[]models.Screening](cache.DefaultTTL)
	}
	return &Service{
		registry:      registry,
		client:        client,
		store:         store,
		sourceTimeout: sourceTimeout,
		enabled:       enabled,
	}
}

// Run aggregates all enabled sources, serving fresh cache entries without
// refetching. Sources that fail to build (an unknown name in the enabled
// list) appear in the breakdown as failed.
func (s *Service) Run(ctx context.Context) models.RunResult {
	names := s.enabled
	if len(names) == 0 {
		names = s.registry.List()
	}

	wrapped := make([]sources.Source, 0, len(names))
	var buildFailures []models.SourceBreakdownEntry
	for _, name := range names {
		src, err := s.registry.Get(name, s.client)
		if err != nil {
			log.Printf("[catalog] %v", err)
			buildFailures = append(buildFailures, models.SourceBreakdownEntry{
				Name:  name,
				Count: 0,
				Error: err.Error(),
			})
			continue
		}
		wrapped = append(wrapped, &cachingSource{src: src, store: s.store})
	}

	result := RunAll(ctx, wrapped, s.sourceTimeout)
	result.Breakdown = append(result.Breakdown, buildFailures...)
	return result
}

// Refresh discards every cached source and re-aggregates.
func (s *Service) Refresh(ctx context.Context) models.RunResult {
	s.store.Clear()
	return s.Run(ctx)
}

// cachingSource serves a source's screenings from the TTL store, fetching
// only on a miss. Failures are never cached; an empty-but-successful result
// is (a venue with nothing listed stays quiet for the whole TTL window).
type cachingSource struct {
	src   sources.Source
	store *cache.Store[[]models.Screening]
}

func (c *cachingSource) Name() string {
	return c.src.Name()
}

func (c *cachingSource) Fetch(ctx context.Context) ([]models.Screening, error) {
	if cached, ok := c.store.Get(c.src.Name()); ok {
		return cached, nil
	}
	screenings, err := c.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.store.Set(c.src.Name(), screenings)
	return screenings, nil
}
