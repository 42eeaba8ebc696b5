package content

import (
	"strings"

	"github.com/samber/lo"

	"github.com/cwilkins507/my-portfolio/internal/domain"
)

// DefaultSearchLimit caps search results.
const DefaultSearchLimit = 6

// Catalog is the loaded, newest-first article list. It is read-only and safe
// for concurrent use.
type Catalog struct {
	articles []domain.Article
	bySlug   map[string]int
	table    domain.CategoryTable
}

// NewCatalog indexes articles, which must already be sorted.
func NewCatalog(articles []domain.Article, table domain.CategoryTable) *Catalog {
	c := &Catalog{
		articles: articles,
		bySlug:   make(map[string]int, len(articles)),
		table:    table,
	}

	for i, a := range articles {
		c.bySlug[a.Slug] = i
	}

	return c
}

// Len returns the number of articles.
func (c *Catalog) Len() int { return len(c.articles) }

// List returns all articles, newest first.
func (c *Catalog) List() []domain.Article {
	return cloneAll(c.articles)
}

// Get returns the article with slug.
func (c *Catalog) Get(slug string) (domain.Article, error) {
	i, ok := c.bySlug[slug]
	if !ok {
		return domain.Article{}, domain.NewNotFoundError("article", slug)
	}

	return cloneArticle(c.articles[i]), nil
}

// ByCategory returns articles classified as name. "All" or "" returns
// everything.
func (c *Catalog) ByCategory(name string) []domain.Article {
	if name == "" || strings.EqualFold(name, domain.AllCategories) {
		return c.List()
	}

	return cloneAll(lo.Filter(c.articles, func(a domain.Article, _ int) bool {
		return strings.EqualFold(a.Category, name)
	}))
}

// ByTag returns articles carrying tag.
func (c *Catalog) ByTag(tag string) []domain.Article {
	return cloneAll(lo.Filter(c.articles, func(a domain.Article, _ int) bool {
		return a.HasTag(tag)
	}))
}

// Search returns up to limit articles whose title, excerpt or tags contain
// query. A non-positive limit means DefaultSearchLimit.
func (c *Catalog) Search(query string, limit int) []domain.Article {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var out []domain.Article

	for _, a := range c.articles {
		if len(out) == limit {
			break
		}

		if a.Matches(query) {
			out = append(out, cloneArticle(a))
		}
	}

	return out
}

// Tags returns each distinct tag once, in first-seen order.
func (c *Catalog) Tags() []string {
	return lo.Uniq(lo.FlatMap(c.articles, func(a domain.Article, _ int) []string {
		return a.Tags
	}))
}

// Categories returns "All" followed by the table's category names.
func (c *Catalog) Categories() []string {
	return append([]string{domain.AllCategories}, c.table.Names()...)
}

// HasCategory reports whether name is "All" or a category in the table,
// ignoring case.
func (c *Catalog) HasCategory(name string) bool {
	return strings.EqualFold(name, domain.AllCategories) || c.table.Has(name)
}

// Featured returns the newest article.
func (c *Catalog) Featured() (domain.Article, bool) {
	if len(c.articles) == 0 {
		return domain.Article{}, false
	}

	return cloneArticle(c.articles[0]), true
}

// Filter narrows the catalog. Empty fields match everything; a non-empty
// Query limits the result to DefaultSearchLimit.
type Filter struct {
	Category string
	Tag      string
	Query    string
}

// IsZero reports whether no filter is set.
func (f Filter) IsZero() bool {
	return f.Category == "" && f.Tag == "" && strings.TrimSpace(f.Query) == ""
}

// Apply returns the articles matching f, newest first.
func (c *Catalog) Apply(f Filter) []domain.Article {
	matched := lo.Filter(c.articles, func(a domain.Article, _ int) bool {
		if f.Category != "" && !strings.EqualFold(f.Category, domain.AllCategories) &&
			!strings.EqualFold(a.Category, f.Category) {
			return false
		}

		if f.Tag != "" && !a.HasTag(f.Tag) {
			return false
		}

		return strings.TrimSpace(f.Query) == "" || a.Matches(f.Query)
	})

	if strings.TrimSpace(f.Query) != "" && len(matched) > DefaultSearchLimit {
		matched = matched[:DefaultSearchLimit]
	}

	return cloneAll(matched)
}

func cloneAll(articles []domain.Article) []domain.Article {
	return lo.Map(articles, func(a domain.Article, _ int) domain.Article {
		return cloneArticle(a)
	})
}

func cloneArticle(a domain.Article) domain.Article {
	a.Tags = a.TagList()
	return a
}
