// internal/model/models.go
package model

import (
	"strings"
	"time"

	custom_errors "gitscout/internal/errors"
)

// UnknownLabel is used for language and owner login when the source omits them.
const UnknownLabel = "Unknown"

// Owner identifies the account that owns a repository.
type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// Repository is the canonical repository record used throughout the service.
// Every field carries a safe default when the upstream payload omits it.
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	URL             string    `json:"html_url"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	Language        string    `json:"language"`
	Topics          []string  `json:"topics"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        time.Time `json:"pushed_at"`
	CreatedAt       time.Time `json:"created_at"`
	Owner           Owner     `json:"owner"`
}

// Category is the derived classification of a repository.
type Category string

const (
	CategoryAI            Category = "AI & ML"
	CategoryBlockchain    Category = "Blockchain"
	CategoryFrontend      Category = "Frontend"
	CategoryBackend       Category = "Backend"
	CategoryUncategorized Category = "All Projects"
	// CategoryAll means "no filter" and is only meaningful at the query layer.
	CategoryAll Category = "All"
)

var categorySlugs = map[string]Category{
	"":             CategoryAll,
	"all":          CategoryAll,
	"all trending": CategoryAll,
	"ai":           CategoryAI,
	"ai & ml":      CategoryAI,
	"blockchain":   CategoryBlockchain,
	"web3":         CategoryBlockchain,
	"frontend":     CategoryFrontend,
	"backend":      CategoryBackend,
	"all projects": CategoryUncategorized,
}

// ParseCategory resolves a category label or URL slug.
func ParseCategory(s string) (Category, error) {
	c, ok := categorySlugs[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", &custom_errors.ErrInvalidCategory{Category: s}
	}
	return c, nil
}

// SortOption is a user-selectable ordering of repositories.
type SortOption string

const (
	SortStars            SortOption = "stars"
	SortUpdated          SortOption = "updated"
	SortForks            SortOption = "forks"
	SortCreated          SortOption = "created"
	SortHelpWantedIssues SortOption = "help-wanted-issues"
)

// ParseSort validates a sort option. An empty string selects SortStars.
func ParseSort(s string) (SortOption, error) {
	switch opt := SortOption(strings.ToLower(strings.TrimSpace(s))); opt {
	case "":
		return SortStars, nil
	case SortStars, SortUpdated, SortForks, SortCreated, SortHelpWantedIssues:
		return opt, nil
	default:
		return "", &custom_errors.ErrInvalidSort{Sort: s}
	}
}
