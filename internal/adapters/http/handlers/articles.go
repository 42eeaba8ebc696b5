package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cwilkins507/my-portfolio/internal/adapters/http/dto"
	"github.com/cwilkins507/my-portfolio/internal/app"
)

// ArticleService is the part of app.ArticleService the handlers use.
type ArticleService interface {
	List(ctx context.Context, q app.ArticleQuery) (app.ArticlePage, error)
	Get(ctx context.Context, slug string) (app.RenderedArticle, error)
	Categories(ctx context.Context) []string
	Tags(ctx context.Context) []string
}

// ArticleHandler serves the article catalog.
type ArticleHandler struct {
	service ArticleService
}

// NewArticleHandler creates the handler.
func NewArticleHandler(service ArticleService) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// List handles GET /api/v1/articles.
func (h *ArticleHandler) List(c *gin.Context) {
	var req dto.ArticleListRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), req.ToQuery())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewArticleListResponse(page))
}

// Get handles GET /api/v1/articles/:slug.
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.service.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewArticleDetail(article))
}

// Categories handles GET /api/v1/categories.
func (h *ArticleHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NamesResponse{Items: h.service.Categories(c.Request.Context())})
}

// Tags handles GET /api/v1/tags.
func (h *ArticleHandler) Tags(c *gin.Context) {
	tags := h.service.Tags(c.Request.Context())
	if tags == nil {
		tags = []string{}
	}

	c.JSON(http.StatusOK, dto.NamesResponse{Items: tags})
}

// RegisterRoutes registers the article routes on rg.
func (h *ArticleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/articles", h.List)
	rg.GET("/articles/:slug", h.Get)
	rg.GET("/categories", h.Categories)
	rg.GET("/tags", h.Tags)
}
