package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestLoggerInit(t *testing.T) {
	// Test development mode
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize development logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Test production mode
	err = Init()
	if err != nil {
		t.Fatalf("failed to initialize production logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger = Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
}

// Basic logging test (slog-backed; no Sugar)
func TestLoggerBasic(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil")
	}

	ctx := context.Background()
	logger.Info(ctx, "test message", String("k", "v"))
}

func TestLoggerNamed(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}

	ctx := context.Background()
	namedLogger.Info(ctx, "test message")
}

func TestLoggerFormats(t *testing.T) {
	for _, format := range []string{"", "text", "JSON"} {
		if err := InitWithFormat(format); err != nil {
			t.Fatalf("format %q: %v", format, err)
		}
		Get().Debug(context.Background(), "formatted",
			Int64("version", 3),
			Bool("finished", false),
			Duration("elapsed", 0),
		)
	}
	if err := InitWithFormat("xml"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
	if err := Init(); err != nil {
		t.Fatal(err)
	}
}

func TestSetLevelString(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "warning", "error", ""} {
		if err := SetLevelString(level); err != nil {
			t.Errorf("level %q: %v", level, err)
		}
	}
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestLoggerContextFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "json")
	if err != nil {
		t.Fatal(err)
	}
	SetLevel(slog.LevelInfo)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithMatch(ctx, "final", "padel")

	l.Named("service").Info(ctx, "point recorded", String("team", "blue"))
	l.Debug(ctx, "hidden below the level")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", buf.String(), err)
	}
	group, ok := rec["service"].(map[string]any)
	if !ok {
		t.Fatalf("missing named group in %v", rec)
	}
	want := map[string]string{
		"team":     "blue",
		"match":    "final",
		"sport":    "padel",
		"trace_id": sc.TraceID().String(),
		"span_id":  sc.SpanID().String(),
	}
	for k, v := range want {
		if group[k] != v {
			t.Errorf("%s = %v, want %s", k, group[k], v)
		}
	}
	if src, _ := group["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("source = %q, want the calling test file", src)
	}
}

func TestLoggerWithoutContextFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "text")
	if err != nil {
		t.Fatal(err)
	}
	SetLevel(slog.LevelInfo)

	l.Warn(context.Background(), "store slow")
	out := buf.String()
	if !strings.Contains(out, "store slow") || strings.Contains(out, "trace_id") || strings.Contains(out, "match=") {
		t.Errorf("unexpected record %q", out)
	}
}
