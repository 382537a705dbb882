package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/oggyb/devmatch/internal/config"
)

// captureStdout redirects stdout to a buffer during f()
func captureStdout(t *testing.T, f func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	_ = r.Close()

	return buf.String()
}

func TestLogger_InitFromConfig(t *testing.T) {
	t.Cleanup(func() { Init(Config{Level: "error", Output: &bytes.Buffer{}}) })

	out := captureStdout(t, func() {
		InitFromConfig(&config.Config{Log: config.LogConfig{Level: "debug", Format: "json", Component: "api"}})
		L().Debug("cfg-based log", "key", "value")
	})

	for _, want := range []string{`"msg":"cfg-based log"`, `"component":"api"`, `"key":"value"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s, got: %s", want, out)
		}
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: "info", Format: FormatText, Component: "test", Output: &buf}).Info("hello devmatch", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello devmatch") || !strings.Contains(out, "component=test") || !strings.Contains(out, "key=value") {
		t.Errorf("unexpected text line: %s", out)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "error", Output: &buf})
	l.Info("should not appear")
	l.Error("should appear")

	if strings.Contains(buf.String(), "should not appear") {
		t.Errorf("info log should not appear, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("error log should appear, got: %s", buf.String())
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "error", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "error", Output: &bytes.Buffer{}}) })

	Info("hidden")
	SetLevel("debug")
	Info("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info before SetLevel should be dropped, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("info after SetLevel should be written, got: %s", buf.String())
	}
	if slog.Default() != L() {
		t.Errorf("Init should install the slog default")
	}
}

func TestLogger_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Format: FormatJSON, Output: &buf}).Info("login",
		"email", "grace@example.com", "password", "correct-horse", "Authorization", "Bearer abc")

	out := buf.String()
	if strings.Contains(out, "correct-horse") || strings.Contains(out, "Bearer abc") {
		t.Errorf("credentials leaked: %s", out)
	}
	if !strings.Contains(out, `"password":"[REDACTED]"`) || !strings.Contains(out, `"email":"grace@example.com"`) {
		t.Errorf("unexpected attributes: %s", out)
	}
}

func TestLogger_WithUser(t *testing.T) {
	var buf bytes.Buffer
	ctx := IntoContext(context.Background(), New(Config{Format: FormatJSON, Output: &buf}))

	FromContext(WithUser(ctx, "u-1")).Info("scoped")

	if !strings.Contains(buf.String(), `"user_id":"u-1"`) {
		t.Errorf("expected user attribute, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Errorf("expected process logger fallback")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"debug+2": slog.LevelDebug + 2,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
