// Package articles embeds the published markdown articles.
package articles

import "embed"

// FS holds every article file at its root.
//
//go:embed *.md
var FS embed.FS
