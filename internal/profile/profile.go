// internal/profile/profile.go
package profile

import (
	"context"
	"log/slog"
	"time"

	gh "github.com/google/go-github/v62/github"

	"gitscout/internal/github"
	"gitscout/internal/model"
)

const (
	// DefaultFallbackUser is whose public repositories are shown without a credential.
	DefaultFallbackUser = "leerob"
	// DefaultNotificationWindow is how recent a push must be to count as an update.
	DefaultNotificationWindow = 24 * time.Hour
)

// Lister fetches repositories on behalf of a user. *github.Client implements it.
type Lister interface {
	ListOwnedRepositories(ctx context.Context, token string) ([]*gh.Repository, error)
	ListUserRepositories(ctx context.Context, username string) ([]*gh.Repository, error)
	ListStarredRepositories(ctx context.Context, token string) ([]*gh.Repository, error)
}

// Service serves the per-user repository views. Every failure degrades to an
// empty list so callers render an empty state instead of an error.
type Service struct {
	lister       Lister
	fallbackUser string
	window       time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// NewService creates a new Service instance.
func NewService(lister Lister, fallbackUser string, window time.Duration, logger *slog.Logger) *Service {
	if fallbackUser == "" {
		fallbackUser = DefaultFallbackUser
	}
	if window <= 0 {
		window = DefaultNotificationWindow
	}
	return &Service{
		lister:       lister,
		fallbackUser: fallbackUser,
		window:       window,
		logger:       logger,
		now:          time.Now,
	}
}

// Owned returns the credential owner's repositories, or the fallback user's
// public repositories when there is no credential.
func (s *Service) Owned(ctx context.Context, credential string) []model.Repository {
	var (
		raw []*gh.Repository
		err error
	)
	if credential != "" {
		raw, err = s.lister.ListOwnedRepositories(ctx, credential)
	} else {
		raw, err = s.lister.ListUserRepositories(ctx, s.fallbackUser)
	}
	if err != nil {
		s.logger.Error("Failed to list owned repositories", "authenticated", credential != "", "error", err)
		return []model.Repository{}
	}
	return github.ToRepositories(raw)
}

// Starred returns the repositories the credential owner has starred.
// Starring is user-scoped, so there is no anonymous fallback.
func (s *Service) Starred(ctx context.Context, credential string) []model.Repository {
	if credential == "" {
		return []model.Repository{}
	}
	raw, err := s.lister.ListStarredRepositories(ctx, credential)
	if err != nil {
		s.logger.Error("Failed to list starred repositories", "error", err)
		return []model.Repository{}
	}
	return github.ToRepositories(raw)
}

// RecentlyPushed returns starred repositories pushed to within the notification window.
func (s *Service) RecentlyPushed(ctx context.Context, credential string) []model.Repository {
	cutoff := s.now().Add(-s.window)

	updated := []model.Repository{}
	for _, r := range s.Starred(ctx, credential) {
		if r.PushedAt.After(cutoff) {
			updated = append(updated, r)
		}
	}
	return updated
}
