// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"gitscout/internal/model"
)

// PerPageMax is the largest page size the GitHub REST API accepts.
const PerPageMax = 100

// Client is a wrapper around the go-github client.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance.
// The token authenticates search calls; an empty token makes anonymous calls.
func NewClient(token string, logger *slog.Logger) *Client {
	return &Client{
		gh:     newGitHubClient(token),
		logger: logger,
	}
}

// NewClientWithBaseURL is like NewClient but targets a GitHub Enterprise or test API root.
func NewClientWithBaseURL(token, baseURL string, logger *slog.Logger) (*Client, error) {
	c := NewClient(token, logger)
	if baseURL == "" {
		return c, nil
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse github api url: %w", err)
	}
	c.gh.BaseURL = u
	return c, nil
}

func newGitHubClient(token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return github.NewClient(oauth2.NewClient(context.Background(), ts))
}

// forToken returns a go-github client acting on behalf of the given credential.
func (c *Client) forToken(token string) *github.Client {
	gh := newGitHubClient(token)
	gh.BaseURL = c.gh.BaseURL
	gh.UploadURL = c.gh.UploadURL
	return gh
}

// SearchRepositories runs a single repository search and returns one page of raw results.
func (c *Client) SearchRepositories(ctx context.Context, query, sort string, perPage int) ([]*github.Repository, error) {
	c.logger.Debug("Searching repositories", "query", query, "sort", sort, "per_page", perPage)

	result, _, err := c.gh.Search.Repositories(ctx, query, &github.SearchOptions{
		Sort:  sort,
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	})
	if err != nil {
		return nil, err
	}
	return result.Repositories, nil
}

// ListOwnedRepositories lists repositories of the user the token belongs to,
// most recently updated first.
func (c *Client) ListOwnedRepositories(ctx context.Context, token string) ([]*github.Repository, error) {
	repos, _, err := c.forToken(token).Repositories.ListByAuthenticatedUser(ctx, &github.RepositoryListByAuthenticatedUserOptions{
		Visibility: "all",
		Sort:       "updated",
		Direction:  "desc",
		ListOptions: github.ListOptions{
			PerPage: PerPageMax,
		},
	})
	return repos, err
}

// ListUserRepositories lists the public repositories of username,
// most recently updated first.
func (c *Client) ListUserRepositories(ctx context.Context, username string) ([]*github.Repository, error) {
	repos, _, err := c.gh.Repositories.ListByUser(ctx, username, &github.RepositoryListByUserOptions{
		Sort:      "updated",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: PerPageMax,
		},
	})
	return repos, err
}

// ListStarredRepositories lists repositories starred by the token's user,
// most recently starred first.
func (c *Client) ListStarredRepositories(ctx context.Context, token string) ([]*github.Repository, error) {
	starred, _, err := c.forToken(token).Activity.ListStarred(ctx, "", &github.ActivityListStarredOptions{
		Sort:      "created",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: PerPageMax,
		},
	})
	if err != nil {
		return nil, err
	}

	repos := make([]*github.Repository, 0, len(starred))
	for _, s := range starred {
		if s.GetRepository() != nil {
			repos = append(repos, s.GetRepository())
		}
	}
	return repos, nil
}

// ToRepository translates a github.Repository object to our internal model.Repository,
// defaulting every field the payload omits.
func ToRepository(r *github.Repository) model.Repository {
	language := r.GetLanguage()
	if language == "" {
		language = model.UnknownLabel
	}
	login := r.GetOwner().GetLogin()
	if login == "" {
		login = model.UnknownLabel
	}
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}

	return model.Repository{
		ID:              r.GetID(),
		Name:            r.GetName(),
		Description:     r.Description,
		URL:             r.GetHTMLURL(),
		StargazersCount: r.GetStargazersCount(),
		ForksCount:      r.GetForksCount(),
		OpenIssuesCount: r.GetOpenIssuesCount(),
		Language:        language,
		Topics:          topics,
		UpdatedAt:       r.GetUpdatedAt().Time,
		PushedAt:        r.GetPushedAt().Time,
		CreatedAt:       r.GetCreatedAt().Time,
		Owner: model.Owner{
			Login:     login,
			AvatarURL: r.GetOwner().GetAvatarURL(),
		},
	}
}

// ToRepositories translates a batch of raw repositories, preserving order
// and skipping nil entries.
func ToRepositories(raw []*github.Repository) []model.Repository {
	repos := make([]model.Repository, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		repos = append(repos, ToRepository(r))
	}
	return repos
}
