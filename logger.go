package tilesheet

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip attribute formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by tilesheet.
// By default, tilesheet produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by tilesheet:
//   - [slog.LevelDebug]: per-cell rendering and source cache activity
//   - [slog.LevelInfo]: session lifecycle (directory scan, load, save)
//   - [slog.LevelWarn]: integrity warnings, unresolved sources, duplicate
//     basenames and repaired metadata
//
// Example:
//
//	tilesheet.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by tilesheet.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
