// Package app holds the use cases behind the HTTP API: browsing articles,
// the quiz funnel and the contact form.
package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/cwilkins507/my-portfolio/internal/content"
	"github.com/cwilkins507/my-portfolio/internal/domain"
	"github.com/cwilkins507/my-portfolio/internal/platform/logging"
	"github.com/cwilkins507/my-portfolio/internal/platform/metrics"
)

// Paging limits for article lists.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// ArticleQuery selects a page of articles.
type ArticleQuery struct {
	Category string
	Tag      string
	Query    string
	Page     int
	PageSize int
}

// ArticlePage is one page of a list. Featured is set only when neither a tag
// nor a search query is given; it is then excluded from Items.
type ArticlePage struct {
	Featured *domain.Article
	Items    []domain.Article
	Total    int
	Page     int
	PageSize int
}

// RenderedArticle is an article with its body rendered to HTML.
type RenderedArticle struct {
	domain.Article
	HTML string
}

// ArticleService serves the loaded catalog.
type ArticleService struct {
	catalog  *content.Catalog
	renderer *content.Renderer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewArticleService creates the service. m may be nil.
func NewArticleService(catalog *content.Catalog, renderer *content.Renderer, m *metrics.Metrics, logger *slog.Logger) *ArticleService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ArticleService{catalog: catalog, renderer: renderer, metrics: m, logger: logger}
}

// List returns a page of articles for q.
func (s *ArticleService) List(_ context.Context, q ArticleQuery) (ArticlePage, error) {
	if err := s.checkCategory(q.Category); err != nil {
		return ArticlePage{}, err
	}

	page, size := normalizePaging(q.Page, q.PageSize)
	result := ArticlePage{Page: page, PageSize: size}

	filter := content.Filter{Category: q.Category, Tag: q.Tag, Query: q.Query}

	var matched []domain.Article

	if q.Tag == "" && strings.TrimSpace(q.Query) == "" {
		featured, ok := s.catalog.Featured()
		if ok {
			result.Featured = &featured
		}

		matched = lo.Reject(s.catalog.Apply(filter), func(a domain.Article, _ int) bool {
			return ok && a.Slug == featured.Slug
		})
	} else {
		matched = s.catalog.Apply(filter)
	}

	result.Total = len(matched)
	result.Items = paginate(matched, page, size)

	return result, nil
}

// Get returns the article with slug rendered to HTML.
func (s *ArticleService) Get(ctx context.Context, slug string) (RenderedArticle, error) {
	article, err := s.catalog.Get(slug)
	if err != nil {
		return RenderedArticle{}, err
	}

	html, err := s.renderer.Render(article)
	if err != nil {
		logging.FromContextOr(ctx, s.logger).ErrorContext(ctx, "render failed",
			slog.String("slug", slug),
			slog.Any("error", err),
		)

		return RenderedArticle{}, err
	}

	s.metrics.ObserveArticleView(article.Slug, article.Category)

	return RenderedArticle{Article: article, HTML: html}, nil
}

// Categories returns "All" followed by the configured category names.
func (s *ArticleService) Categories(context.Context) []string {
	return s.catalog.Categories()
}

// Tags returns every tag in use, in first-seen order.
func (s *ArticleService) Tags(context.Context) []string {
	return s.catalog.Tags()
}

func (s *ArticleService) checkCategory(name string) error {
	if name == "" {
		return nil
	}

	if !s.catalog.HasCategory(name) {
		return domain.NewValidationErrorWithValue("category", "unknown category", name)
	}

	return nil
}

func normalizePaging(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}

	switch {
	case size < 1:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}

	return page, size
}

func paginate(items []domain.Article, page, size int) []domain.Article {
	start := (page - 1) * size
	if start >= len(items) {
		return []domain.Article{}
	}

	return items[start:min(start+size, len(items))]
}
