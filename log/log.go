// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"sync/atomic"

	"github.com/holiman/uint256"
)

// Logger is the key-value logger used across the codebase. Package loggers are
// created with WithContext and pick up the process-wide handler.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
}

var root atomic.Pointer[slog.Logger]

func init() {
	root.Store(slog.New(DiscardHandler()))
}

// SetHandler replaces the process-wide handler. Loggers created before or after
// the call all route through it.
func SetHandler(h slog.Handler) {
	root.Store(slog.New(h))
}

// WithContext creates a logger carrying the given context pairs,
// e.g. log.WithContext("pkg", "pool").
func WithContext(kv ...any) Logger {
	return &logger{attrs: kv}
}

type logger struct {
	attrs []any
}

func (l *logger) log(level slog.Level, msg string, kv ...any) {
	r := root.Load().With(l.attrs...)
	r.Log(context.Background(), level, msg, normalize(kv)...)
}

func (l *logger) Debug(msg string, kv ...any) { l.log(slog.LevelDebug, msg, kv...) }
func (l *logger) Info(msg string, kv ...any)  { l.log(slog.LevelInfo, msg, kv...) }
func (l *logger) Warn(msg string, kv ...any)  { l.log(slog.LevelWarn, msg, kv...) }
func (l *logger) Error(msg string, kv ...any) { l.log(slog.LevelError, msg, kv...) }

func (l *logger) With(kv ...any) Logger {
	attrs := make([]any, 0, len(l.attrs)+len(kv))
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, kv...)
	return &logger{attrs: attrs}
}

// normalize renders arbitrary-precision values in decimal so handlers don't
// fall back to struct formatting.
func normalize(kv []any) []any {
	out := make([]any, len(kv))
	for i, v := range kv {
		switch n := v.(type) {
		case *big.Int:
			if n != nil {
				out[i] = n.String()
				continue
			}
		case *uint256.Int:
			if n != nil {
				out[i] = n.Dec()
				continue
			}
		}
		out[i] = v
	}
	return out
}

type discardHandler struct{}

// DiscardHandler returns a no-op handler; the default until SetHandler is called.
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (h *discardHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (h *discardHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *discardHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// TerminalHandler returns a human readable text handler at the given level.
func TerminalHandler(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{Level: level})
}

// JSONHandler returns a machine readable handler at the given level.
func JSONHandler(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{Level: level})
}
