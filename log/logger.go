// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Levels beyond the slog defaults.
const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12

	levelMaxVerbosity slog.Level = LevelTrace
)

// Legacy 0-9 verbosity levels accepted by the command line.
const (
	LegacyLevelCrit = iota
	LegacyLevelError
	LegacyLevelWarn
	LegacyLevelInfo
	LegacyLevelDebug
	LegacyLevelTrace
)

// FromLegacyLevel converts a 0-9 verbosity into a slog level.
// Anything above trace is trace.
func FromLegacyLevel(lvl int) slog.Level {
	switch lvl {
	case LegacyLevelCrit:
		return LevelCrit
	case LegacyLevelError:
		return LevelError
	case LegacyLevelWarn:
		return LevelWarn
	case LegacyLevelInfo:
		return LevelInfo
	case LegacyLevelDebug:
		return LevelDebug
	}
	if lvl < 0 {
		return LevelCrit
	}
	return LevelTrace
}

// LevelFromString parses level names such as "info" or "dbug".
func LevelFromString(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "trce":
		return LevelTrace, nil
	case "debug", "dbug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error", "eror":
		return LevelError, nil
	case "crit":
		return LevelCrit, nil
	}
	return LevelInfo, errors.Errorf("unknown level: %v", s)
}

// LevelAlignedString returns a 5-character string containing the name of a level.
func LevelAlignedString(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO "
	case slog.LevelWarn:
		return "WARN "
	case slog.LevelError:
		return "ERROR"
	case LevelCrit:
		return "CRIT "
	default:
		return "unknown level"
	}
}

// LevelString returns a string containing the name of a level.
func LevelString(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "trace"
	case slog.LevelDebug:
		return "debug"
	case slog.LevelInfo:
		return "info"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	case LevelCrit:
		return "crit"
	default:
		return "unknown"
	}
}

// Logger writes key/value pairs to a slog handler.
type Logger interface {
	With(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	// Crit logs and terminates the process.
	Crit(msg string, ctx ...any)

	Enabled(ctx context.Context, level slog.Level) bool
	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// NewLogger returns a logger writing to h.
func NewLogger(h slog.Handler) Logger {
	return &logger{slog.New(h)}
}

func (l *logger) write(level slog.Level, msg string, attrs ...any) {
	l.writeSkip(4, level, msg, attrs...)
}

// writeSkip records the caller skip frames up, counted from runtime.Callers.
func (l *logger) writeSkip(skip int, level slog.Level, msg string, attrs ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(skip, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(attrs...)
	l.inner.Handler().Handle(context.Background(), r)
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx...) }

func (l *logger) Crit(msg string, ctx ...any) {
	l.write(LevelCrit, msg, ctx...)
	os.Exit(1)
}

func (l *logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.inner.Enabled(ctx, level)
}

func (l *logger) Handler() slog.Handler {
	return l.inner.Handler()
}

var root atomic.Value

func init() {
	root.Store(&rootHolder{NewLogger(DiscardHandler())})
}

type rootHolder struct {
	l Logger
}

// SetDefault sets the root logger. Loggers made by WithContext follow the change.
func SetDefault(l Logger) {
	root.Store(&rootHolder{l})
}

// Root returns the root logger.
func Root() Logger {
	return root.Load().(*rootHolder).l
}

// WithContext returns a logger carrying ctx on top of the current root logger.
// It is meant for package level loggers, which are created before the root is configured.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

type lazyLogger struct {
	ctx    []any
	cached atomic.Pointer[lazyEntry]
}

type lazyEntry struct {
	holder *rootHolder
	l      Logger
}

func (l *lazyLogger) resolve() Logger {
	holder := root.Load().(*rootHolder)
	if e := l.cached.Load(); e != nil && e.holder == holder {
		return e.l
	}
	e := &lazyEntry{holder, holder.l.With(l.ctx...)}
	l.cached.Store(e)
	return e.l
}

func (l *lazyLogger) With(ctx ...any) Logger {
	return &lazyLogger{ctx: append(append([]any{}, l.ctx...), ctx...)}
}

func (l *lazyLogger) log(level slog.Level, msg string, ctx []any) {
	switch r := l.resolve().(type) {
	case *logger:
		r.writeSkip(4, level, msg, ctx...)
	default:
		// foreign root logger, caller position is not preserved
		switch level {
		case LevelTrace:
			r.Trace(msg, ctx...)
		case LevelDebug:
			r.Debug(msg, ctx...)
		case LevelInfo:
			r.Info(msg, ctx...)
		case LevelWarn:
			r.Warn(msg, ctx...)
		default:
			r.Error(msg, ctx...)
		}
	}
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.log(LevelTrace, msg, ctx) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.log(LevelDebug, msg, ctx) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.log(LevelInfo, msg, ctx) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.log(LevelWarn, msg, ctx) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.log(LevelError, msg, ctx) }

func (l *lazyLogger) Crit(msg string, ctx ...any) {
	l.log(LevelCrit, msg, ctx)
	os.Exit(1)
}

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.resolve().Enabled(ctx, level)
}

func (l *lazyLogger) Handler() slog.Handler {
	return l.resolve().Handler()
}
