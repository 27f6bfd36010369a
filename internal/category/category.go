// internal/category/category.go
package category

import (
	"strings"

	"gitscout/internal/model"
)

type rule struct {
	category model.Category
	keywords []string
}

// Rules are checked in order; the first category with a matching keyword wins.
var rules = []rule{
	{model.CategoryAI, []string{"machine-learning", "nlp", "python", "pytorch", "tensorflow", "openai", "llm", "deepseek", "ai", "transformers"}},
	{model.CategoryBlockchain, []string{"solidity", "sui", "move", "blockchain", "web3", "rust", "smart-contracts", "ethereum", "crypto"}},
	{model.CategoryFrontend, []string{"react", "nextjs", "typescript", "tailwind", "vue", "svelte", "css", "javascript", "ui"}},
	{model.CategoryBackend, []string{"nodejs", "express", "database", "docker", "java", "go", "golang", "sql", "postgres", "mongodb", "kubernetes"}},
}

// Categorize maps a repository's topics to a category. A topic matches a keyword
// when it contains it as a substring, so "django" matches "go".
func Categorize(topics []string) model.Category {
	lower := make([]string, len(topics))
	for i, t := range topics {
		lower[i] = strings.ToLower(t)
	}

	for _, r := range rules {
		for _, topic := range lower {
			for _, k := range r.keywords {
				if strings.Contains(topic, k) {
					return r.category
				}
			}
		}
	}
	return model.CategoryUncategorized
}

// Filter returns the repositories whose derived category is c.
// CategoryAll keeps every repository.
func Filter(repos []model.Repository, c model.Category) []model.Repository {
	out := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		if c == model.CategoryAll || Categorize(r.Topics) == c {
			out = append(out, r)
		}
	}
	return out
}
