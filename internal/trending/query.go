// internal/trending/query.go
package trending

import (
	"gitscout/internal/model"
)

const (
	popularityFloor = "stars:>1000"
	scopedPageSize  = 50
)

// query is one repository search request.
type query struct {
	text    string
	sort    string
	perPage int
}

var scopedQualifiers = map[model.Category]string{
	model.CategoryAI:         "topic:machine-learning",
	model.CategoryBlockchain: "topic:blockchain",
	model.CategoryFrontend:   "language:typescript",
	model.CategoryBackend:    "language:go",
}

// unscopedQueries back the "All" view. Each targets one ecosystem with its own
// floor so a single star-heavy ecosystem cannot crowd out the others; the
// updated-sorted legs surface young projects. Order decides dedup winners.
var unscopedQueries = []query{
	{text: "stars:>5000 language:typescript", sort: "stars", perPage: 25},
	{text: "stars:>5000 language:go", sort: "stars", perPage: 25},
	{text: "stars:>500 topic:solidity", sort: "stars", perPage: 25},
	{text: "stars:>1000 topic:machine-learning", sort: "stars", perPage: 25},
	{text: "stars:>100 topic:llm", sort: "updated", perPage: 30},
	{text: "stars:>100 topic:nextjs", sort: "updated", perPage: 30},
}

// scopedQuery builds the single search used when one category is requested.
// Unknown categories search by the popularity floor alone.
func scopedQuery(sort model.SortOption, category model.Category) query {
	text := popularityFloor
	if qualifier, ok := scopedQualifiers[category]; ok {
		text += " " + qualifier
	}
	return query{
		text:    text,
		sort:    searchSort(sort),
		perPage: scopedPageSize,
	}
}

// searchSort maps a sort option onto the search API vocabulary, which has no "created".
func searchSort(sort model.SortOption) string {
	if sort == model.SortCreated {
		return string(model.SortUpdated)
	}
	return string(sort)
}
