package domain

import (
	"slices"
	"strings"
	"time"
)

// DateLayout is the ISO date format used for article dates.
const DateLayout = "2006-01-02"

// Article is one published piece of writing. Values are built once by the
// content loader and never mutated afterwards; accessors that expose slices
// return copies.
type Article struct {
	// Slug is derived from the file name and used for routing.
	Slug string

	Title   string
	Excerpt string

	// Date is kept as the ISO string from front matter. Sorting and display
	// both work on the string so an unparseable date still round-trips.
	Date string

	Tags []string

	// Content is the raw markdown body with front matter removed.
	Content string

	// Category is derived from Tags by a CategoryTable.
	Category string
}

// dateLayouts are tried in order by PublishedAt. Hand-written front matter
// sometimes drops the zero padding.
var dateLayouts = []string{DateLayout, "2006-1-2", time.RFC3339}

// PublishedAt parses Date. The zero time is returned for malformed dates.
func (a Article) PublishedAt() time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(a.Date)); err == nil {
			return t
		}
	}

	return time.Time{}
}

// TagList returns a copy of the article's tags.
func (a Article) TagList() []string {
	return slices.Clone(a.Tags)
}

// HasTag reports whether the article carries tag, ignoring case.
func (a Article) HasTag(tag string) bool {
	return slices.ContainsFunc(a.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// Matches reports whether query appears in the title, excerpt or any tag,
// case-insensitively. An empty query matches nothing.
func (a Article) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}

	if strings.Contains(strings.ToLower(a.Title), q) || strings.Contains(strings.ToLower(a.Excerpt), q) {
		return true
	}

	return slices.ContainsFunc(a.Tags, func(t string) bool {
		return strings.Contains(strings.ToLower(t), q)
	})
}

// NewerThan orders articles by Date descending. Dates that do not parse
// fall back to comparing the raw strings.
func NewerThan(a, b Article) int {
	at, bt := a.PublishedAt(), b.PublishedAt()
	if at.IsZero() || bt.IsZero() {
		return strings.Compare(b.Date, a.Date)
	}

	return bt.Compare(at)
}
