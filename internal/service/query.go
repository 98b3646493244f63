package service

import (
	"sort"
	"strings"

	"github.com/sakif/newsdesk/internal/model"
)

// Filters are the optional article-listing criteria. All present filters are
// ANDed together.
type Filters struct {
	// Status matches exactly. When empty, the default visibility rule
	// applies: non-admin callers see only approved articles.
	Status model.Status
	// Category matches case-insensitively.
	Category string
	// Search matches a case-insensitive substring of the title, summary, or
	// any tag. The body is deliberately not searched.
	Search string
	// AuthorID matches exactly.
	AuthorID string
	// Tags matches articles carrying at least one of the given tags.
	Tags []string
}

// The functions below are pure: they operate on slices the repository
// returned and know nothing about storage. Status and author narrowing
// happen in SQL; everything else happens here so the logic stays identical
// no matter what backs the repository.

// filterArticles returns the articles matching the in-memory criteria of f
// (category, search, tags). Status and author are assumed to be already
// narrowed by the repository query.
func filterArticles(articles []model.Article, f Filters) []model.Article {
	out := articles[:0:0]
	for _, a := range articles {
		if matchesFilters(&a, f) {
			out = append(out, a)
		}
	}
	return out
}

func matchesFilters(a *model.Article, f Filters) bool {
	if f.Category != "" && !strings.EqualFold(a.Category, f.Category) {
		return false
	}

	if f.Search != "" && !matchesSearch(a, f.Search) {
		return false
	}

	if len(f.Tags) > 0 && !hasAnyTag(a, f.Tags) {
		return false
	}

	return true
}

func matchesSearch(a *model.Article, search string) bool {
	term := strings.ToLower(search)
	if strings.Contains(strings.ToLower(a.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(a.Summary), term) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func hasAnyTag(a *model.Article, tags []string) bool {
	for _, want := range tags {
		for _, have := range a.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// sortByDisplayDate orders articles most-recent first by their effective
// display date (publishedAt when published, createdAt otherwise). The sort
// is stable so equal-dated articles keep the repository's order.
func sortByDisplayDate(articles []model.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].DisplayDate().After(articles[j].DisplayDate())
	})
}

// paginate slices out the requested 1-indexed page and returns it together
// with the total size of the filtered set (before slicing). Pages past the
// end yield an empty slice, not an error.
func paginate(articles []model.Article, page, pageSize int) ([]model.Article, int) {
	total := len(articles)

	start := (page - 1) * pageSize
	if start >= total {
		return []model.Article{}, total
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	return articles[start:end], total
}
