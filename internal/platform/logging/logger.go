// Package logging builds the service's slog logger: console output in JSON,
// text or charmbracelet "pretty" form, an optional rolling JSON file, and
// redaction of secrets and visitor contact details on every path.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelTrace sits below debug and is used for per-request relay payload logs.
const LevelTrace = slog.Level(-8)

// Config holds logging configuration.
type Config struct {
	Level       string // trace, debug, info, warn, error
	Format      string // json, text, pretty
	Service     string
	Version     string
	Environment string
	File        FileConfig
}

// FileConfig configures the rolling JSON log file.
type FileConfig struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates the logger writing to stdout and, when enabled, to the rolling
// file. The returned closer flushes and closes the file.
func New(cfg Config) (*slog.Logger, io.Closer) {
	return newLogger(cfg, os.Stdout)
}

// NewWithWriter creates a logger writing console output to w.
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	logger, _ := newLogger(cfg, w)
	return logger
}

func newLogger(cfg Config, w io.Writer) (*slog.Logger, io.Closer) {
	level := parseLevel(cfg.Level)
	handler := consoleHandler(cfg, w, level)

	var closer io.Closer = nopCloser{}

	if cfg.File.Enabled && cfg.File.Path != "" {
		rolling := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		closer = rolling

		fileHandler := slog.NewJSONHandler(rolling, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: NewReplaceAttr(),
		})
		handler = NewMultiHandler(handler, fileHandler)
	}

	attrs := []any{
		slog.String("service_name", cfg.Service),
		slog.String("service_version", cfg.Version),
	}
	if cfg.Environment != "" {
		attrs = append(attrs, slog.String("environment", cfg.Environment))
	}

	return slog.New(handler).With(attrs...), closer
}

func consoleHandler(cfg Config, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: NewReplaceAttr()}

	switch strings.ToLower(cfg.Format) {
	case "text":
		return slog.NewTextHandler(w, opts)
	case "pretty":
		pretty := log.NewWithOptions(w, log.Options{
			Level:           slogToCharmLevel(level),
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Prefix:          cfg.Service,
		})

		return newRedactingHandler(pretty, NewReplaceAttr())
	default:
		return slog.NewJSONHandler(w, opts)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// slogToCharmLevel maps slog levels onto charm levels. Both use the same
// numeric scale; trace has no charm equivalent and maps to debug.
func slogToCharmLevel(level slog.Level) log.Level {
	switch {
	case level < slog.LevelDebug:
		return log.DebugLevel
	case level > slog.LevelError:
		return log.ErrorLevel
	default:
		return log.Level(level)
	}
}
