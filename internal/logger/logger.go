package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oggyb/devmatch/internal/config"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Redacted replaces the value of credential attributes.
const Redacted = "[REDACTED]"

// attribute keys that never reach the output in clear text
var secretKeys = map[string]bool{
	"password":      true,
	"password_hash": true,
	"token":         true,
	"authorization": true,
	"jwt_secret":    true,
}

type Config struct {
	Level      string
	Format     Format
	Component  string
	WithSource bool
	// Output defaults to os.Stdout.
	Output io.Writer
}

var (
	global atomic.Pointer[slog.Logger]
	level  = new(slog.LevelVar)
)

// InitFromConfig installs the process logger from the app config.
func InitFromConfig(c *config.Config) {
	if c == nil {
		Init(Config{})
		return
	}
	Init(Config{
		Level:      c.Log.Level,
		Format:     Format(c.Log.Format),
		Component:  c.Log.Component,
		WithSource: c.Log.Source,
	})
}

// Init replaces the process logger and makes it the slog default, so
// libraries logging through slog end up in the same stream.
// Its level stays adjustable through SetLevel.
func Init(c Config) {
	level.Set(ParseLevel(c.Level))
	l := build(c, level)
	global.Store(l)
	slog.SetDefault(l)
}

// SetLevel changes the process logger's level without rebuilding it.
func SetLevel(s string) { level.Set(ParseLevel(s)) }

// New builds a standalone logger with a fixed level. The process logger
// is left alone.
func New(c Config) *slog.Logger { return build(c, ParseLevel(c.Level)) }

func build(c Config, lvl slog.Leveler) *slog.Logger {
	out := c.Output
	if out == nil {
		out = os.Stdout
	}
	json := Format(strings.ToLower(string(c.Format))) == FormatJSON

	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   c.WithSource,
		ReplaceAttr: replaceAttr(json),
	}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	l := slog.New(handler)
	if c.Component != "" {
		l = l.With("component", c.Component)
	}
	return l
}

func replaceAttr(json bool) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if secretKeys[strings.ToLower(a.Key)] {
			return slog.String(a.Key, Redacted)
		}
		if !json && a.Key == slog.TimeKey && len(groups) == 0 {
			return slog.String(slog.TimeKey, a.Value.Time().Format("2006-01-02 15:04:05"))
		}
		return a
	}
}

// L returns the process logger, installing a text/info one on first use.
func L() *slog.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	l := build(Config{}, level)
	if global.CompareAndSwap(nil, l) {
		return l
	}
	return global.Load()
}

func Info(msg string, args ...any)  { L().Info(msg, args...) }
func Error(msg string, args ...any) { L().Error(msg, args...) }

type ctxKey struct{}

// IntoContext attaches a request-scoped logger.
func IntoContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger, falling back to L.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return L()
}

// WithUser tags the request logger with the authenticated caller.
func WithUser(ctx context.Context, userID string) context.Context {
	return IntoContext(ctx, FromContext(ctx).With("user_id", userID))
}

// Since is the latency attribute attached to finished calls.
func Since(start time.Time) slog.Attr {
	return slog.Duration("took", time.Since(start))
}

// ParseLevel accepts slog level names ("debug", "INFO", "warn+2") plus
// "warning". Anything else is info.
func ParseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
