// internal/ranking/ranking.go
package ranking

import (
	"cmp"
	"slices"

	gh "github.com/google/go-github/v62/github"

	"gitscout/internal/github"
	"gitscout/internal/model"
)

// Merge flattens result batches in order, keeps the first occurrence of every
// repository ID and orders the survivors by stars, highest first.
func Merge(batches [][]*gh.Repository) []model.Repository {
	seen := make(map[int64]struct{})
	var unique []model.Repository

	for _, batch := range batches {
		for _, raw := range batch {
			if raw == nil {
				continue
			}
			if _, ok := seen[raw.GetID()]; ok {
				continue
			}
			seen[raw.GetID()] = struct{}{}
			unique = append(unique, github.ToRepository(raw))
		}
	}

	if unique == nil {
		return []model.Repository{}
	}
	slices.SortStableFunc(unique, byStars)
	return unique
}

// Sort returns a copy of repos ordered for presentation. The input is not modified.
func Sort(repos []model.Repository, opt model.SortOption) []model.Repository {
	out := slices.Clone(repos)
	if out == nil {
		return []model.Repository{}
	}

	switch opt {
	case model.SortStars:
		slices.SortStableFunc(out, byStars)
	case model.SortForks:
		slices.SortStableFunc(out, func(a, b model.Repository) int {
			return cmp.Compare(b.ForksCount, a.ForksCount)
		})
	case model.SortUpdated:
		slices.SortStableFunc(out, func(a, b model.Repository) int {
			return b.PushedAt.Compare(a.PushedAt)
		})
	case model.SortCreated:
		slices.SortStableFunc(out, func(a, b model.Repository) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case model.SortHelpWantedIssues:
		slices.SortStableFunc(out, func(a, b model.Repository) int {
			return cmp.Compare(b.OpenIssuesCount, a.OpenIssuesCount)
		})
	}
	return out
}

func byStars(a, b model.Repository) int {
	return cmp.Compare(b.StargazersCount, a.StargazersCount)
}
