package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []Entry {
	t.Helper()
	var entries []Entry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerRespectsMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("submit", WARN, &buf)
	logger.Info("submit", "dropped", nil)
	logger.Warn("submit", "kept", map[string]any{"form": "loginForm"})
	logger.Error("submit", "failed", errors.New("boom"), nil)

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "kept" || entries[0].Component != "submit" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[0].Fields["form"] != "loginForm" {
		t.Fatalf("expected form field, got %+v", entries[0].Fields)
	}
	if entries[1].Error != "boom" || entries[1].Level != "ERROR" {
		t.Fatalf("unexpected error entry %+v", entries[1])
	}
}

func TestDiscardAndNilLoggerAreSilent(t *testing.T) {
	Discard().Error("x", "y", errors.New("z"), nil)
	var nilLogger *Logger
	nilLogger.Info("x", "y", nil)
	if nilLogger.Enabled(ERROR) {
		t.Fatal("nil logger should never be enabled")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": DEBUG, " WARN ": WARN, "warning": WARN, "error": ERROR, "": INFO, "bogus": INFO}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): want %s got %s", in, want, got)
		}
	}
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := NewHTTPLogger(New("ui-server", INFO, &buf))
	handler := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("expected request ID on inbound request")
		}
		w.WriteHeader(http.StatusBadRequest)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	handler.ServeHTTP(rec, req)

	id := rec.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("expected response request ID")
	}
	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].RequestID != id || entries[0].Level != "WARN" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
	if entries[0].Category != "http" || entries[0].Duration == nil {
		t.Fatalf("expected http entry with duration, got %+v", entries[0])
	}
	if entries[0].Fields["xhr"] != true {
		t.Fatalf("expected xhr flag, got %+v", entries[0].Fields)
	}
}

func TestMiddlewareKeepsInboundRequestID(t *testing.T) {
	h := NewHTTPLogger(Discard())
	handler := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected inbound id to be echoed, got %q", got)
	}
}

func TestLogContextCarriesRequestFields(t *testing.T) {
	var buf bytes.Buffer
	l := New("ui-server", INFO, &buf)

	l.WithRequestID("req-1").WithCategory("proxy").WithField("path", "/auth/login").Error("backend request failed", errors.New("dial tcp: refused"))
	l.WithRequestID("req-2").WithCategory("http").Log(DEBUG, "filtered", nil)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.RequestID != "req-1" || got.Category != "proxy" || got.Level != "ERROR" || got.Component != "ui-server" {
		t.Fatalf("unexpected entry %+v", got)
	}
	if got.Error != "dial tcp: refused" || got.Fields["path"] != "/auth/login" {
		t.Fatalf("unexpected error or fields %+v", got)
	}
	if got.Duration != nil {
		t.Fatalf("expected no duration, got %d", *got.Duration)
	}
}
