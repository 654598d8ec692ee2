package tika

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"

	"lingosort/internal/services"
)

func newFakeTika(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL
}

func TestExtractFlattensXHTML(t *testing.T) {
	var received string
	url := newFakeTika(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/tika" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		received = string(body)
		_, _ = io.WriteString(w, `<html xmlns="http://www.w3.org/1999/xhtml"><head><title>cv</title><meta name="author" content="x"/></head>`+
			`<body><p>Hello <b>world</b></p><p>second paragraph</p></body></html>`)
	})
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/in/cv.pdf", []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := NewClient(fs, Config{URL: url})
	text, err := client.Extract(context.Background(), "/in/cv.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if received != "%PDF-1.4 fake" {
		t.Fatalf("server received %q", received)
	}
	if strings.Contains(text, "cv") || strings.Contains(text, "<") {
		t.Fatalf("expected head and markup stripped, got %q", text)
	}
	if got := strings.Join(strings.Fields(text), " "); got != "Hello world second paragraph" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestExtractPlainTextAnswer(t *testing.T) {
	url := newFakeTika(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "\n  plain body text  \n")
	})
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/a.rtf", []byte("{\\rtf1}"), 0o644)

	text, err := NewClient(fs, Config{URL: url}).Extract(context.Background(), "/a.rtf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "plain body text" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractFailures(t *testing.T) {
	url := newFakeTika(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/corrupt.rtf", []byte("garbage"), 0o644)
	client := NewClient(fs, Config{URL: url})

	if _, err := client.Extract(context.Background(), "/corrupt.rtf"); !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("server rejection: expected extraction error, got %v", err)
	}
	if _, err := client.Extract(context.Background(), "/missing.pdf"); !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("missing file: expected extraction error, got %v", err)
	}
}

func TestExtractHonoursTimeout(t *testing.T) {
	url := newFakeTika(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/slow.pdf", []byte("x"), 0o644)

	client := NewClient(fs, Config{URL: url, Timeout: 50 * time.Millisecond})
	start := time.Now()
	if _, err := client.Extract(context.Background(), "/slow.pdf"); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("timeout not applied, took %s", elapsed)
	}
}

func TestRateLimiterThrottles(t *testing.T) {
	var calls atomic.Int32
	url := newFakeTika(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, "ok")
	})
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/a.pdf", []byte("x"), 0o644)
	client := NewClient(fs, Config{URL: url, RequestsPerSecond: 20})

	start := time.Now()
	for range 5 {
		if _, err := client.Extract(context.Background(), "/a.pdf"); err != nil {
			t.Fatalf("Extract: %v", err)
		}
	}
	// Burst of 20 means no waiting for 5 requests; the limiter must not block them.
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("unexpected throttling delay %s", elapsed)
	}

	slow := NewClient(fs, Config{URL: url, RequestsPerSecond: 0.5})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := slow.Extract(ctx, "/a.pdf"); err != nil {
		t.Fatalf("first request should pass the bucket: %v", err)
	}
	if _, err := slow.Extract(ctx, "/a.pdf"); !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("second request should be throttled past the deadline, got %v", err)
	}
	if calls.Load() != 6 {
		t.Fatalf("expected 6 requests to reach the server, got %d", calls.Load())
	}
}

func TestPing(t *testing.T) {
	url := newFakeTika(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/version" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, "Apache Tika 2.9.2\n")
	})
	version, err := NewClient(afero.NewMemMapFs(), Config{URL: url}).Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if version != "Apache Tika 2.9.2" {
		t.Fatalf("unexpected version %q", version)
	}

	_, err = NewClient(afero.NewMemMapFs(), Config{URL: "http://127.0.0.1:1"}).Ping(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for unreachable server, got %v", err)
	}
}
