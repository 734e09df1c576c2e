package familyfilter

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source provides analysis snapshots. Implementations must return a snapshot
// that is not mutated while it is being filtered.
type Source interface {
	LoadAnalysis(ctx context.Context, analysisID int64) (*Analysis, error)
}

// Analyses is an in-memory Source.
type Analyses map[int64]*Analysis

// LoadAnalysis implements Source.
func (a Analyses) LoadAnalysis(_ context.Context, analysisID int64) (*Analysis, error) {
	an, ok := a[analysisID]
	if !ok {
		return nil, fmt.Errorf("analysis %d not found", analysisID)
	}
	return an, nil
}

// FilterAll loads and filters the given analyses concurrently, using at most
// Config.Workers goroutines (unbounded when zero). The first error cancels the
// remaining work. Results are keyed by analysis id.
func (f *Filter) FilterAll(ctx context.Context, src Source, analysisIDs []int64) (map[int64]*Result, error) {
	g, ctx := errgroup.WithContext(ctx)
	if f.cfg.Workers > 0 {
		g.SetLimit(f.cfg.Workers)
	}

	var mu sync.Mutex
	results := make(map[int64]*Result, len(analysisIDs))

	for _, id := range analysisIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			a, err := src.LoadAnalysis(ctx, id)
			if err != nil {
				return fmt.Errorf("load analysis %d: %w", id, err)
			}

			res, err := f.FilterAnalysis(a)
			if err != nil {
				return err
			}

			mu.Lock()
			results[id] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.logger.Info("analyses filtered", zap.Int("count", len(results)))
	return results, nil
}
