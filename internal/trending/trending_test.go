// internal/trending/trending_test.go
package trending

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gh "github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gitscout/internal/cache"
	custom_errors "gitscout/internal/errors"
	"gitscout/internal/model"
)

// MockSearcher is a mock of the Searcher interface.
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) SearchRepositories(ctx context.Context, query, sort string, perPage int) ([]*gh.Repository, error) {
	args := m.Called(ctx, query, sort, perPage)
	repos, _ := args.Get(0).([]*gh.Repository)
	return repos, args.Error(1)
}

// funcSearcher adapts a function to the Searcher interface.
type funcSearcher struct {
	calls atomic.Int32
	fn    func(ctx context.Context, query, sort string, perPage int) ([]*gh.Repository, error)
}

func (f *funcSearcher) SearchRepositories(ctx context.Context, query, sort string, perPage int) ([]*gh.Repository, error) {
	f.calls.Add(1)
	return f.fn(ctx, query, sort, perPage)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func raw(id int64, stars int) *gh.Repository {
	return &gh.Repository{ID: gh.Int64(id), Name: gh.String("repo"), StargazersCount: gh.Int(stars)}
}

func TestScopedQuery(t *testing.T) {
	t.Run("blockchain sorted by created searches by updated", func(t *testing.T) {
		q := scopedQuery(model.SortCreated, model.CategoryBlockchain)

		assert.Equal(t, "stars:>1000 topic:blockchain", q.text)
		assert.Equal(t, "updated", q.sort)
		assert.Equal(t, 50, q.perPage)
	})

	t.Run("known categories add their qualifier", func(t *testing.T) {
		assert.Equal(t, "stars:>1000 topic:machine-learning", scopedQuery(model.SortStars, model.CategoryAI).text)
		assert.Equal(t, "stars:>1000 language:typescript", scopedQuery(model.SortStars, model.CategoryFrontend).text)
		assert.Equal(t, "stars:>1000 language:go", scopedQuery(model.SortForks, model.CategoryBackend).text)
		assert.Equal(t, "forks", scopedQuery(model.SortForks, model.CategoryBackend).sort)
	})

	t.Run("unknown categories use the floor alone", func(t *testing.T) {
		assert.Equal(t, "stars:>1000", scopedQuery(model.SortStars, model.Category("Gaming")).text)
		assert.Equal(t, "stars:>1000", scopedQuery(model.SortStars, model.CategoryUncategorized).text)
	})
}

func TestUnscopedQueries(t *testing.T) {
	require.Len(t, unscopedQueries, 6)
	updatedLegs := 0
	for _, q := range unscopedQueries {
		assert.GreaterOrEqual(t, q.perPage, 25)
		assert.LessOrEqual(t, q.perPage, 30)
		if q.sort == "updated" {
			updatedLegs++
		}
	}
	assert.Positive(t, updatedLegs)
}

func TestService_Trending_Scoped(t *testing.T) {
	ctx := context.Background()
	searcher := new(MockSearcher)
	searcher.On("SearchRepositories", mock.Anything, "stars:>1000 topic:blockchain", "updated", 50).
		Return([]*gh.Repository{raw(1, 10), raw(2, 500)}, nil).Once()

	svc := NewService(searcher, cache.NewMemory(time.Hour), time.Second, testLogger())
	repos, err := svc.Trending(ctx, model.SortCreated, model.CategoryBlockchain)

	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, int64(1), repos[0].ID, "scoped results keep API order")
	searcher.AssertExpectations(t)
}

func TestService_Trending_ScopedFailureIsEmpty(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("SearchRepositories", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("boom")).Once()

	svc := NewService(searcher, cache.NewMemory(time.Hour), time.Second, testLogger())
	repos, err := svc.Trending(context.Background(), model.SortStars, model.CategoryFrontend)

	require.NoError(t, err)
	assert.Empty(t, repos)
}

func TestService_Trending_FanOut(t *testing.T) {
	var mu sync.Mutex
	var seen []string

	searcher := &funcSearcher{fn: func(_ context.Context, query, _ string, _ int) ([]*gh.Repository, error) {
		mu.Lock()
		seen = append(seen, query)
		mu.Unlock()

		switch query {
		case unscopedQueries[0].text:
			return []*gh.Repository{raw(1, 10), raw(2, 500)}, nil
		case unscopedQueries[1].text:
			return []*gh.Repository{raw(3, 42), raw(2, 500)}, nil
		case unscopedQueries[2].text:
			return nil, errors.New("rate limited")
		case unscopedQueries[3].text:
			panic("malformed response")
		default:
			return nil, nil
		}
	}}

	svc := NewService(searcher, cache.NewMemory(time.Hour), time.Second, testLogger())
	repos, err := svc.Trending(context.Background(), model.SortStars, model.CategoryAll)

	require.NoError(t, err)
	assert.Equal(t, int32(len(unscopedQueries)), searcher.calls.Load())
	assert.Len(t, seen, len(unscopedQueries))

	require.Len(t, repos, 3)
	assert.Equal(t, []int64{2, 3, 1}, []int64{repos[0].ID, repos[1].ID, repos[2].ID})
	assert.Equal(t, 500, repos[0].StargazersCount)
}

func TestService_Trending_FanOutIsConcurrent(t *testing.T) {
	var inFlight, peak atomic.Int32
	searcher := &funcSearcher{fn: func(context.Context, string, string, int) ([]*gh.Repository, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		inFlight.Add(-1)
		return nil, nil
	}}

	svc := NewService(searcher, cache.NewMemory(time.Hour), 5*time.Second, testLogger())
	_, err := svc.Trending(context.Background(), model.SortStars, model.CategoryAll)

	require.NoError(t, err)
	assert.Greater(t, peak.Load(), int32(1))
}

func TestService_Trending_Timeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	searcher := &funcSearcher{fn: func(context.Context, string, string, int) ([]*gh.Repository, error) {
		<-release
		return []*gh.Repository{raw(1, 1)}, nil
	}}
	c := cache.NewMemory(time.Hour)

	svc := NewService(searcher, c, 50*time.Millisecond, testLogger())
	repos, err := svc.Trending(context.Background(), model.SortStars, model.CategoryAll)

	require.Error(t, err)
	assert.Nil(t, repos)
	var timeoutErr *custom_errors.ErrTimeout
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 50*time.Millisecond, timeoutErr.After)

	_, cached := c.Get(context.Background(), cache.Key{Sort: model.SortStars, Category: model.CategoryAll})
	assert.False(t, cached, "timeouts must not be cached")
}

func TestService_Trending_TimeoutWithContextAwareSearcher(t *testing.T) {
	searcher := &funcSearcher{fn: func(ctx context.Context, _, _ string, _ int) ([]*gh.Repository, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	svc := NewService(searcher, cache.NewMemory(time.Hour), 50*time.Millisecond, testLogger())
	_, err := svc.Trending(context.Background(), model.SortStars, model.CategoryBackend)

	var timeoutErr *custom_errors.ErrTimeout
	assert.ErrorAs(t, err, &timeoutErr)
}

func TestService_Trending_CallerCancellation(t *testing.T) {
	searcher := &funcSearcher{fn: func(ctx context.Context, _, _ string, _ int) ([]*gh.Repository, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	svc := NewService(searcher, cache.NewMemory(time.Hour), 5*time.Second, testLogger())
	_, err := svc.Trending(ctx, model.SortStars, model.CategoryAll)

	assert.ErrorIs(t, err, context.Canceled)
	var timeoutErr *custom_errors.ErrTimeout
	assert.False(t, errors.As(err, &timeoutErr))
}

func TestService_Trending_CacheReuse(t *testing.T) {
	searcher := &funcSearcher{fn: func(context.Context, string, string, int) ([]*gh.Repository, error) {
		return []*gh.Repository{raw(1, 1)}, nil
	}}
	c := cache.NewMemory(time.Hour)
	svc := NewService(searcher, c, time.Second, testLogger())
	ctx := context.Background()

	first, err := svc.Trending(ctx, model.SortStars, model.CategoryAll)
	require.NoError(t, err)
	second, err := svc.Trending(ctx, model.SortStars, model.CategoryAll)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(len(unscopedQueries)), searcher.calls.Load(), "second call must be served from cache")

	_, err = svc.Trending(ctx, model.SortForks, model.CategoryAll)
	require.NoError(t, err)
	assert.Equal(t, int32(2*len(unscopedQueries)), searcher.calls.Load(), "a different key fans out again")
}

func TestService_Trending_RefetchAfterExpiry(t *testing.T) {
	searcher := &funcSearcher{fn: func(context.Context, string, string, int) ([]*gh.Repository, error) {
		return []*gh.Repository{raw(1, 1)}, nil
	}}
	svc := NewService(searcher, cache.NewMemory(30*time.Millisecond), time.Second, testLogger())
	ctx := context.Background()

	_, err := svc.Trending(ctx, model.SortStars, model.CategoryAI)
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = svc.Trending(ctx, model.SortStars, model.CategoryAI)
	require.NoError(t, err)

	assert.Equal(t, int32(2), searcher.calls.Load())
}
