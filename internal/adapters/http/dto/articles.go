package dto

import (
	"github.com/samber/lo"

	"github.com/cwilkins507/my-portfolio/internal/app"
	"github.com/cwilkins507/my-portfolio/internal/domain"
)

// ArticleListRequest holds the /articles query parameters.
type ArticleListRequest struct {
	PageRequest

	Category string `form:"category"`
	Tag      string `form:"tag"`
	Query    string `form:"q" validate:"max=200"`
}

// ToQuery converts the request to a service query.
func (r ArticleListRequest) ToQuery() app.ArticleQuery {
	return app.ArticleQuery{
		Category: r.Category,
		Tag:      r.Tag,
		Query:    r.Query,
		Page:     r.Page,
		PageSize: r.PageSize,
	}
}

// ArticleSummary is an article in a list.
type ArticleSummary struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Date     string   `json:"date"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
}

// ArticleDetail is one article with its rendered body.
type ArticleDetail struct {
	ArticleSummary

	HTML string `json:"html"`
}

// ArticleListResponse is a page of articles. Featured is present only
// without a tag or search filter.
type ArticleListResponse struct {
	Featured *ArticleSummary `json:"featured,omitempty"`

	PageResponse[ArticleSummary]
}

// NamesResponse lists category or tag names.
type NamesResponse struct {
	Items []string `json:"items"`
}

// NewArticleSummary converts a domain article.
func NewArticleSummary(a domain.Article) ArticleSummary {
	tags := a.TagList()
	if tags == nil {
		tags = []string{}
	}

	return ArticleSummary{
		Slug:     a.Slug,
		Title:    a.Title,
		Excerpt:  a.Excerpt,
		Date:     a.Date,
		Tags:     tags,
		Category: a.Category,
	}
}

// NewArticleDetail converts a rendered article.
func NewArticleDetail(a app.RenderedArticle) ArticleDetail {
	return ArticleDetail{ArticleSummary: NewArticleSummary(a.Article), HTML: a.HTML}
}

// NewArticleListResponse converts a service page.
func NewArticleListResponse(p app.ArticlePage) ArticleListResponse {
	resp := ArticleListResponse{
		PageResponse: NewPageResponse(
			lo.Map(p.Items, func(a domain.Article, _ int) ArticleSummary { return NewArticleSummary(a) }),
			p.Total, p.Page, p.PageSize,
		),
	}

	if p.Featured != nil {
		featured := NewArticleSummary(*p.Featured)
		resp.Featured = &featured
	}

	return resp
}
