// Package content builds the article catalog from markdown files and renders
// article bodies to HTML.
package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"golang.org/x/sync/errgroup"

	"github.com/cwilkins507/my-portfolio/internal/content/frontmatter"
	"github.com/cwilkins507/my-portfolio/internal/domain"
)

const defaultConcurrency = 8

// Loader reads article files from a filesystem into a Catalog.
type Loader struct {
	fsys        fs.FS
	table       domain.CategoryTable
	logger      *slog.Logger
	now         func() time.Time
	strictSlugs bool
	concurrency int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCategoryTable replaces the default category table.
func WithCategoryTable(table domain.CategoryTable) LoaderOption {
	return func(l *Loader) { l.table = table }
}

// WithLogger sets the logger used for skipped files.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// WithClock sets the clock used to date articles that have no date.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

// WithStrictSlugs makes duplicate slugs fail the load instead of dropping
// the later file.
func WithStrictSlugs(strict bool) LoaderOption {
	return func(l *Loader) { l.strictSlugs = strict }
}

// WithConcurrency bounds the number of files parsed at once.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// NewLoader creates a loader over fsys.
func NewLoader(fsys fs.FS, opts ...LoaderOption) *Loader {
	l := &Loader{
		fsys:        fsys,
		table:       domain.DefaultCategoryTable(),
		logger:      slog.Default(),
		now:         time.Now,
		concurrency: defaultConcurrency,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load enumerates every .md file, parses them concurrently and returns the
// catalog sorted newest first. Files that cannot be read are logged and left
// out. Duplicate slugs keep the first file in enumeration order.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	files, err := l.enumerate()
	if err != nil {
		return nil, fmt.Errorf("enumerating articles: %w", err)
	}

	today := l.now().Format(domain.DateLayout)
	parsed := make([]*domain.Article, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			article, err := l.loadFile(name, today)
			if err != nil {
				l.logger.WarnContext(gctx, "skipping article", slog.String("file", name), slog.Any("error", err))
				return nil
			}

			parsed[i] = article

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading articles: %w", err)
	}

	articles, err := l.dedupe(ctx, files, parsed)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(articles, domain.NewerThan)

	l.logger.InfoContext(ctx, "articles loaded",
		slog.Int("files", len(files)),
		slog.Int("articles", len(articles)),
	)

	return NewCatalog(articles, l.table), nil
}

func (l *Loader) enumerate() ([]string, error) {
	var files []string

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.EqualFold(path.Ext(p), ".md") {
			files = append(files, p)
		}

		return nil
	})

	return files, err
}

func (l *Loader) loadFile(name, today string) (*domain.Article, error) {
	raw, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, err
	}

	doc := frontmatter.Parse(string(raw))
	s := slugFor(name)

	article := &domain.Article{
		Slug:    s,
		Title:   s,
		Date:    today,
		Tags:    []string{},
		Content: doc.Content,
	}

	if v, ok := doc.Data.String("title"); ok && v != "" {
		article.Title = v
	}

	if v, ok := doc.Data.String("excerpt"); ok {
		article.Excerpt = v
	}

	if v, ok := doc.Data.String("date"); ok && v != "" {
		article.Date = v
	}

	if tags := doc.Data.List("tags"); tags != nil {
		article.Tags = tags
	}

	article.Category = l.table.Classify(article.Tags)

	return article, nil
}

func (l *Loader) dedupe(ctx context.Context, files []string, parsed []*domain.Article) ([]domain.Article, error) {
	seen := make(map[string]string, len(parsed))
	articles := make([]domain.Article, 0, len(parsed))

	var errs []error

	for i, a := range parsed {
		if a == nil {
			continue
		}

		if first, dup := seen[a.Slug]; dup {
			l.logger.ErrorContext(ctx, "duplicate article slug",
				slog.String("slug", a.Slug),
				slog.String("file", files[i]),
				slog.String("kept", first),
			)

			errs = append(errs, domain.NewConflictErrorWithDetails("article", "duplicate slug "+a.Slug, files[i]))

			continue
		}

		seen[a.Slug] = files[i]
		articles = append(articles, *a)
	}

	if l.strictSlugs && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return articles, nil
}

// slugFor derives the routing slug from a file name, falling back to the
// bare name when it cannot be normalised.
func slugFor(name string) string {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))

	s, err := slug.Normalize(base)
	if err != nil || s == "" {
		return base
	}

	return s
}
