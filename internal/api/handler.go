// internal/api/handler.go
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gitscout/internal/category"
	custom_errors "gitscout/internal/errors"
	"gitscout/internal/model"
	"gitscout/internal/ranking"
	"gitscout/internal/timefmt"
)

const highLoadMessage = "Our scouts are taking a break due to high traffic. Please try again later."

// TrendingService serves cached trending repository lists.
type TrendingService interface {
	Trending(ctx context.Context, sort model.SortOption, category model.Category) ([]model.Repository, error)
}

// ProfileService serves the per-user repository views.
type ProfileService interface {
	Owned(ctx context.Context, credential string) []model.Repository
	Starred(ctx context.Context, credential string) []model.Repository
	RecentlyPushed(ctx context.Context, credential string) []model.Repository
}

// Handler is the container for API dependencies.
type Handler struct {
	trending TrendingService
	profile  ProfileService
	logger   *slog.Logger
	now      func() time.Time
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(trending TrendingService, profile ProfileService, logger *slog.Logger) http.Handler {
	h := &Handler{
		trending: trending,
		profile:  profile,
		logger:   logger,
		now:      time.Now,
	}
	return h.routes()
}

func (h *Handler) routes() http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/trending", h.getTrending)
		r.Get("/explore", h.getExplore)
		r.Route("/me", func(r chi.Router) {
			r.Get("/repos", h.getOwnedRepos)
			r.Get("/starred", h.getStarredRepos)
			r.Get("/notifications", h.getNotifications)
		})
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getTrending returns trending repositories fetched for one category.
// GET /v1/trending?category=ai&sort=forks
func (h *Handler) getTrending(w http.ResponseWriter, r *http.Request) {
	sort, cat, ok := h.parseListParams(w, r)
	if !ok {
		return
	}

	repos, err := h.trending.Trending(r.Context(), sort, cat)
	if err != nil {
		h.respondWithTrendingError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ranking.Sort(repos, sort))
}

// getExplore filters and re-sorts the cached "All" base set.
// GET /v1/explore?category=frontend&sort=updated
func (h *Handler) getExplore(w http.ResponseWriter, r *http.Request) {
	sort, cat, ok := h.parseListParams(w, r)
	if !ok {
		return
	}

	repos, err := h.trending.Trending(r.Context(), model.SortStars, model.CategoryAll)
	if err != nil {
		h.respondWithTrendingError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ranking.Sort(category.Filter(repos, cat), sort))
}

// getOwnedRepos returns the caller's repositories, optionally filtered by category.
// GET /v1/me/repos?category=backend
func (h *Handler) getOwnedRepos(w http.ResponseWriter, r *http.Request) {
	cat, err := model.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	repos := h.profile.Owned(r.Context(), credential(r))
	if cat == model.CategoryAll {
		repos = ranking.Sort(repos, model.SortStars)
	} else {
		repos = category.Filter(repos, cat)
	}

	respondWithJSON(w, http.StatusOK, repos)
}

// getStarredRepos returns the repositories the caller has starred.
// GET /v1/me/starred
func (h *Handler) getStarredRepos(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.profile.Starred(r.Context(), credential(r)))
}

type notification struct {
	model.Repository
	Updated string `json:"updated"`
}

// getNotifications returns starred repositories with recent pushes.
// GET /v1/me/notifications
func (h *Handler) getNotifications(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	repos := h.profile.RecentlyPushed(r.Context(), credential(r))

	out := make([]notification, 0, len(repos))
	for _, repo := range repos {
		out = append(out, notification{Repository: repo, Updated: timefmt.Relative(repo.PushedAt, now)})
	}

	respondWithJSON(w, http.StatusOK, out)
}

func (h *Handler) parseListParams(w http.ResponseWriter, r *http.Request) (model.SortOption, model.Category, bool) {
	sort, err := model.ParseSort(r.URL.Query().Get("sort"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	cat, err := model.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	return sort, cat, true
}

func (h *Handler) respondWithTrendingError(w http.ResponseWriter, err error) {
	var timeoutErr *custom_errors.ErrTimeout
	if errors.As(err, &timeoutErr) {
		respondWithError(w, http.StatusServiceUnavailable, highLoadMessage)
		return
	}
	if errors.Is(err, context.Canceled) {
		// Client disconnected.
		return
	}
	h.logger.Error("Failed to get trending repositories", "error", err)
	respondWithError(w, http.StatusInternalServerError, "Internal server error")
}

// credential extracts the bearer token from the Authorization header.
func credential(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	for _, scheme := range []string{"Bearer ", "bearer ", "token "} {
		if token, ok := strings.CutPrefix(header, scheme); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}
