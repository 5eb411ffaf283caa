package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/ghuser/inventory/pkg/config"
)

func newTestLogger(buf *bytes.Buffer) Logger {
	return NewWithWriter(&config.Config{LogLevel: "debug"}, buf)
}

func setupTracer(t *testing.T) {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
}

func parseLastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("failed to parse log line %q: %v", last, err)
	}
	return m
}

func TestTraceFields(t *testing.T) {
	setupTracer(t)

	t.Run("span in context", func(t *testing.T) {
		var buf bytes.Buffer
		log := newTestLogger(&buf)

		ctx, span := otel.Tracer("test").Start(context.Background(), "ItemService.GetByID")
		defer span.End()
		log.InfoContext(ctx, "item created", "item_id", int64(1))

		entry := parseLastLine(t, &buf)
		if entry["trace_id"] != span.SpanContext().TraceID().String() {
			t.Errorf("trace_id: got %v, want %s", entry["trace_id"], span.SpanContext().TraceID())
		}
		if entry["span_id"] != span.SpanContext().SpanID().String() {
			t.Errorf("span_id: got %v, want %s", entry["span_id"], span.SpanContext().SpanID())
		}
	})

	t.Run("no span", func(t *testing.T) {
		var buf bytes.Buffer
		log := newTestLogger(&buf)

		log.InfoContext(context.Background(), "item created", "item_id", int64(1))

		entry := parseLastLine(t, &buf)
		if _, ok := entry["trace_id"]; ok {
			t.Error("trace_id should not be present without an active span")
		}
		if _, ok := entry["span_id"]; ok {
			t.Error("span_id should not be present without an active span")
		}
	})
}

// TestCacheFailureLine checks the shape of the WARN line written when a cache
// call fails: level, numeric item_id and the error text.
func TestCacheFailureLine(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf)

	log.WarnContext(context.Background(), "item cache get failed", "item_id", int64(42), "error", errors.New("i/o timeout"))

	entry := parseLastLine(t, &buf)
	if entry["level"] != "WARN" {
		t.Errorf("level: got %v, want WARN", entry["level"])
	}
	if entry["item_id"] != float64(42) {
		t.Errorf("item_id: got %v, want 42", entry["item_id"])
	}
	if entry["error"] != "i/o timeout" {
		t.Errorf("error: got %v", entry["error"])
	}
}

func TestWith_BindsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf).With("topic", "item.updated")

	log.Info("events: handler failed, retrying", "attempt", 1)

	entry := parseLastLine(t, &buf)
	if entry["topic"] != "item.updated" || entry["attempt"] != float64(1) {
		t.Errorf("unexpected entry: %v", entry)
	}
}

// TestMiddleware_RequestLine verifies the request line carries chi's
// request_id, the OTel trace of the handler's context and the status.
func TestMiddleware_RequestLine(t *testing.T) {
	setupTracer(t)

	var buf bytes.Buffer
	log := newTestLogger(&buf)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(Middleware(log))
	r.Get("/api/items/{id}/", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/items/7/", http.NoBody))

	entry := parseLastLine(t, &buf)
	if _, ok := entry["request_id"]; !ok {
		t.Error("expected request_id in request log")
	}
	if entry["method"] != "GET" || entry["path"] != "/api/items/7/" || entry["status"] != float64(404) {
		t.Errorf("unexpected request line: %v", entry)
	}
	if entry["level"] != "WARN" {
		t.Errorf("expected WARN for a 404, got %v", entry["level"])
	}
}

func TestNewWithWriter_ServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{
		LogLevel:       "info",
		ServiceName:    "inventory",
		ServiceVersion: "1.2.3",
		Environment:    "testing",
	}, &buf)

	log.Debug("hidden")
	log.Info("started")

	entry := parseLastLine(t, &buf)
	if entry["msg"] != "started" {
		t.Fatalf("debug line should be filtered, got %v", entry)
	}
	if entry["service"] != "inventory" || entry["version"] != "1.2.3" || entry["env"] != "testing" {
		t.Errorf("missing service attributes: %v", entry)
	}
}

func TestStatusLevel(t *testing.T) {
	tests := map[int]slog.Level{
		http.StatusOK:                  slog.LevelInfo,
		http.StatusCreated:             slog.LevelInfo,
		http.StatusUnauthorized:        slog.LevelWarn,
		http.StatusTooManyRequests:     slog.LevelWarn,
		http.StatusInternalServerError: slog.LevelError,
		http.StatusServiceUnavailable:  slog.LevelError,
	}
	for status, want := range tests {
		if got := statusLevel(status); got != want {
			t.Errorf("statusLevel(%d) = %v, want %v", status, got, want)
		}
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf)

	h := Recovery(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil item")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/items/1/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["code"] != "internal" {
		t.Fatalf("expected internal error body, got %q (%v)", rr.Body.String(), err)
	}
	entry := parseLastLine(t, &buf)
	if entry["msg"] != "panic recovered" || entry["error"] != "nil item" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if stack, _ := entry["stack"].(string); stack == "" {
		t.Error("expected stack trace")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
