// internal/trending/trending.go
package trending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gh "github.com/google/go-github/v62/github"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gitscout/internal/cache"
	custom_errors "gitscout/internal/errors"
	"gitscout/internal/github"
	"gitscout/internal/model"
	"gitscout/internal/ranking"
)

// DefaultTimeout bounds a whole trending fetch, fan-out included.
const DefaultTimeout = 15 * time.Second

// Searcher runs one repository search. *github.Client implements it.
type Searcher interface {
	SearchRepositories(ctx context.Context, query, sort string, perPage int) ([]*gh.Repository, error)
}

// Service answers trending requests from the cache, fanning out to the search API on a miss.
type Service struct {
	searcher Searcher
	cache    cache.Cache
	timeout  time.Duration
	logger   *slog.Logger
}

// NewService creates a new Service instance.
func NewService(searcher Searcher, c cache.Cache, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		searcher: searcher,
		cache:    c,
		timeout:  timeout,
		logger:   logger,
	}
}

// Trending returns the trending repositories for category, as fetched with sort.
// Concurrent misses on the same key may each fetch; the last one stored wins.
// The only error besides caller cancellation is *errors.ErrTimeout.
func (s *Service) Trending(ctx context.Context, sort model.SortOption, category model.Category) ([]model.Repository, error) {
	key := cache.Key{Sort: sort, Category: category}
	if repos, ok := s.cache.Get(ctx, key); ok {
		s.logger.Debug("Trending cache hit", "key", key.String(), "count", len(repos))
		return repos, nil
	}

	repos, err := s.fetch(ctx, sort, category)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, repos)
	return repos, nil
}

// fetch races the search work against the timeout.
func (s *Service) fetch(ctx context.Context, sort model.SortOption, category model.Category) ([]model.Repository, error) {
	guardCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger := s.logger.With("run_id", uuid.NewString(), "category", string(category), "sort", string(sort))
	start := time.Now()

	done := make(chan []model.Repository, 1)
	go func() {
		done <- s.run(guardCtx, logger, sort, category)
	}()

	select {
	case repos := <-done:
		if guardCtx.Err() == nil {
			logger.Info("Trending fetch finished", "count", len(repos), "elapsed", time.Since(start).String())
			return repos, nil
		}
	case <-guardCtx.Done():
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Error("Trending fetch timed out", "timeout", s.timeout.String())
	return nil, &custom_errors.ErrTimeout{After: s.timeout}
}

func (s *Service) run(ctx context.Context, logger *slog.Logger, sort model.SortOption, category model.Category) []model.Repository {
	if category != model.CategoryAll {
		q := scopedQuery(sort, category)
		return github.ToRepositories(s.search(ctx, logger, q))
	}

	batches := s.fanOut(ctx, logger, unscopedQueries)
	return ranking.Merge(batches)
}

// fanOut issues every query concurrently. batches[i] holds the result of queries[i],
// empty when that query failed.
func (s *Service) fanOut(ctx context.Context, logger *slog.Logger, queries []query) [][]*gh.Repository {
	batches := make([][]*gh.Repository, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			batches[i] = s.search(gctx, logger, q)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, b := range batches {
		total += len(b)
	}
	logger.Debug("Fan-out settled", "queries", len(queries), "raw_items", total)
	return batches
}

// search runs one query, mapping any failure to an empty batch.
func (s *Service) search(ctx context.Context, logger *slog.Logger, q query) (items []*gh.Repository) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Search query panicked", "query", q.text, "panic", fmt.Sprint(r))
			items = nil
		}
	}()

	items, err := s.searcher.SearchRepositories(ctx, q.text, q.sort, q.perPage)
	if err != nil {
		logSearchFailure(logger, q, err)
		return nil
	}
	logger.Debug("Search query succeeded", "query", q.text, "count", len(items))
	return items
}

func logSearchFailure(logger *slog.Logger, q query, err error) {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	switch {
	case errors.As(err, &rateErr):
		logger.Warn("Search query rate limited", "query", q.text, "reset", rateErr.Rate.Reset.Time)
	case errors.As(err, &abuseErr):
		logger.Warn("Search query hit secondary rate limit", "query", q.text, "retry_after", abuseErr.GetRetryAfter().String())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Debug("Search query abandoned", "query", q.text, "error", err)
	default:
		logger.Warn("Search query failed", "query", q.text, "error", err)
	}
}
