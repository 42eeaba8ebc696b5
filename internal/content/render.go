package content

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/cwilkins507/my-portfolio/internal/domain"
)

// Default renderer settings.
const (
	DefaultTableClass = "article-table"
	DefaultCacheSize  = 128
)

// RenderOptions configures a Renderer.
type RenderOptions struct {
	// ImageBase prefixes relative image paths, e.g. "/images/articles".
	// Empty leaves image paths untouched.
	ImageBase string

	// TableClass is set as the class attribute of every table.
	TableClass string

	// CacheSize bounds the rendered HTML cache, in articles.
	CacheSize int
}

// Renderer converts article markdown to HTML. Output is cached per slug;
// articles are immutable, so entries never go stale.
type Renderer struct {
	md    goldmark.Markdown
	cache cache.Cache[string, string]
}

// NewRenderer builds a renderer with GFM, heading IDs and the image and
// table embellishments.
func NewRenderer(opts RenderOptions) *Renderer {
	if opts.TableClass == "" {
		opts.TableClass = DefaultTableClass
	}

	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}

	embellish := &embellisher{imageBase: opts.ImageBase, tableClass: opts.TableClass}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.TaskList),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(embellish, 100)),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	return &Renderer{
		md:    md,
		cache: cache.NewCache[string, string]().WithLRU().WithMaxKeys(opts.CacheSize),
	}
}

// Render returns the HTML for article.
func (r *Renderer) Render(article domain.Article) (string, error) {
	if out, ok := r.cache.Get(article.Slug); ok {
		return out, nil
	}

	out, err := r.RenderMarkdown(article.Content)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", article.Slug, err)
	}

	r.cache.Set(article.Slug, out, 0)

	return out, nil
}

// RenderMarkdown converts src without caching.
func (r *Renderer) RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}

	return buf.String(), nil
}

// CacheStats reports render cache hits and misses.
func (r *Renderer) CacheStats() cache.Stats {
	return r.cache.Stat()
}

// embellisher rewrites image destinations and tags tables with a class.
type embellisher struct {
	imageBase  string
	tableClass string
}

func (e *embellisher) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Image:
			node.Destination = []byte(rewriteImage(e.imageBase, string(node.Destination)))
		case *east.Table:
			node.SetAttributeString("class", []byte(e.tableClass))
		}

		return ast.WalkContinue, nil
	})
}

// rewriteImage prefixes relative destinations with base. Absolute paths,
// URLs and data URIs are left as they are.
func rewriteImage(base, dest string) string {
	if base == "" || dest == "" || isAbsolute(dest) {
		return dest
	}

	rel := path.Clean("/" + dest)

	return strings.TrimRight(base, "/") + rel
}

func isAbsolute(dest string) bool {
	if strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") {
		return true
	}

	scheme, _, found := strings.Cut(dest, ":")

	return found && !strings.ContainsAny(scheme, "/.")
}
