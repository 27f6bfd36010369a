// internal/warmer/warmer.go
package warmer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"gitscout/internal/cache"
	"gitscout/internal/model"
)

const (
	// Number of keys refreshed in parallel. Each unscoped key is itself a six-way fan-out.
	concurrency = 2
)

// DefaultKeys are the views requested most often: the explore base set and each category tab.
var DefaultKeys = []cache.Key{
	{Sort: model.SortStars, Category: model.CategoryAll},
	{Sort: model.SortStars, Category: model.CategoryAI},
	{Sort: model.SortStars, Category: model.CategoryBlockchain},
	{Sort: model.SortStars, Category: model.CategoryFrontend},
	{Sort: model.SortStars, Category: model.CategoryBackend},
}

// TrendingService is the subset of trending.Service the warmer drives.
type TrendingService interface {
	Trending(ctx context.Context, sort model.SortOption, category model.Category) ([]model.Repository, error)
}

// Warmer periodically requests a fixed set of trending keys so expired entries
// are recomputed before a user asks for them. Fresh entries are cache hits and cost nothing.
type Warmer struct {
	trending TrendingService
	logger   *slog.Logger
	keys     []cache.Key
	interval time.Duration
}

// NewWarmer creates a new Warmer instance.
func NewWarmer(trending TrendingService, logger *slog.Logger, keys []cache.Key, interval time.Duration) *Warmer {
	if len(keys) == 0 {
		keys = DefaultKeys
	}
	return &Warmer{
		trending: trending,
		logger:   logger,
		keys:     keys,
		interval: interval,
	}
}

// Start runs a warm cycle immediately and then on every tick until ctx is done.
func (w *Warmer) Start(ctx context.Context) {
	w.logger.Info("Starting cache warmer", "interval", w.interval.String(), "keys", len(w.keys), "concurrency", concurrency)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runCycle(ctx) // Initial warm-up

	for {
		select {
		case <-ticker.C:
			w.runCycle(ctx)
		case <-ctx.Done():
			w.logger.Info("Cache warmer shutting down", "reason", ctx.Err())
			return
		}
	}
}

// runCycle requests every key, a few at a time.
func (w *Warmer) runCycle(ctx context.Context) {
	w.logger.Debug("Starting warm cycle")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, key := range w.keys {
		key := key
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			repos, err := w.trending.Trending(gctx, key.Sort, key.Category)
			if err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Warn("Failed to warm trending key", "key", key.String(), "error", err)
				return nil
			}
			w.logger.Debug("Warmed trending key", "key", key.String(), "count", len(repos))
			return nil
		})
	}

	_ = g.Wait()
	w.logger.Debug("Warm cycle finished")
}
