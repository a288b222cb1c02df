// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a slim slog front. Packages grab a contextual logger once
// at init via WithContext; the backing handler and level can be swapped
// later (typically by the command bootstrap) and all loggers pick it up.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Log levels, aliased so callers don't need to import slog.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	level   slog.LevelVar
	current atomic.Pointer[slog.Handler]
)

func init() {
	h := slog.Handler(NewTerminalHandler(os.Stderr, &level, false))
	current.Store(&h)
}

// Level returns the shared level var controlling all loggers.
func Level() *slog.LevelVar {
	return &level
}

// SetHandler replaces the backing handler for all loggers.
func SetHandler(h slog.Handler) {
	current.Store(&h)
}

// Init configures the backing terminal handler.
func Init(w io.Writer, lvl slog.Level, useColor bool) {
	level.Set(lvl)
	SetHandler(NewTerminalHandler(w, &level, useColor))
}

// Root returns the root logger.
func Root() *slog.Logger {
	return slog.New(&proxyHandler{})
}

// WithContext returns a logger carrying the given key-value context.
func WithContext(kv ...any) *slog.Logger {
	return Root().With(kv...)
}

// proxyHandler delegates to the handler current at record time, so loggers
// created before Init still honor it.
type proxyHandler struct {
	attrs []slog.Attr
}

func (p *proxyHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return (*current.Load()).Enabled(ctx, lvl)
}

func (p *proxyHandler) Handle(ctx context.Context, r slog.Record) error {
	h := *current.Load()
	if len(p.attrs) > 0 {
		h = h.WithAttrs(p.attrs)
	}
	return h.Handle(ctx, r)
}

func (p *proxyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(p.attrs)+len(attrs))
	merged = append(merged, p.attrs...)
	merged = append(merged, attrs...)
	return &proxyHandler{attrs: merged}
}

func (p *proxyHandler) WithGroup(name string) slog.Handler {
	// groups are flattened; contextual attrs are enough here
	return p
}
