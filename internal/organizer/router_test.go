package organizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"lingosort/internal/services"
)

const outputRoot = "/out"

func newTestRouter(t *testing.T, fs afero.Fs, dryRun bool) (*Router, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r, err := New(fs, Options{
		OutputDir: outputRoot,
		Languages: map[string]string{"he": "hebrew", "en": "english"},
		DryRun:    dryRun,
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, &buf
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNewTableNormalizes(t *testing.T) {
	table, err := NewTable(map[string]string{"iw": "Hebrew Docs", "eng": "english"})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if got := table["he"]; got != "hebrew_docs" {
		t.Fatalf("he dir = %q", got)
	}
	if got := table["en"]; got != "english" {
		t.Fatalf("en dir = %q", got)
	}
	codes := table.Codes()
	if len(codes) != 2 || codes[0] != "en" || codes[1] != "he" {
		t.Fatalf("codes = %v", codes)
	}
	entries := table.Entries()
	if entries[1].Name != "Hebrew" {
		t.Fatalf("entry name = %q", entries[1].Name)
	}
}

func TestNewTableRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"empty":        {},
		"unknown code": {"x1z": "other"},
		"empty dir":    {"en": "  "},
		"conflict":     {"he": "hebrew", "iw": "ivrit"},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewTable(raw); !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestNewRequiresOutputDir(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), Options{Languages: map[string]string{"en": "english"}})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRouteMovesDocument(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, _ := newTestRouter(t, fs, false)
	writeFile(t, fs, "/in/shalom.pdf", "shalom")

	placement, err := r.Route(context.Background(), "/in/shalom.pdf", "he")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	want := filepath.Join(outputRoot, "hebrew", "shalom.pdf")
	if placement.Path != want || placement.Language != "he" {
		t.Fatalf("placement = %+v", placement)
	}
	if r.SourceExists("/in/shalom.pdf") {
		t.Fatal("source still present")
	}
	data, err := afero.ReadFile(fs, want)
	if err != nil || string(data) != "shalom" {
		t.Fatalf("destination content %q err %v", data, err)
	}
}

func TestRouteNormalizesDetectorCodes(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, _ := newTestRouter(t, fs, false)
	writeFile(t, fs, "/in/a.docx", "a")

	placement, err := r.Route(context.Background(), "/in/a.docx", "eng")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if placement.Language != "en" || placement.Directory != filepath.Join(outputRoot, "english") {
		t.Fatalf("placement = %+v", placement)
	}
}

func TestRouteIsIdempotentForDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, _ := newTestRouter(t, fs, false)
	if err := fs.MkdirAll(filepath.Join(outputRoot, "english"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, fs, "/in/one.txt", "1")
	writeFile(t, fs, "/in/two.txt", "2")

	for _, src := range []string{"/in/one.txt", "/in/two.txt"} {
		if _, err := r.Route(context.Background(), src, "en"); err != nil {
			t.Fatalf("Route(%s): %v", src, err)
		}
	}
	// A rerun over an already routed file is a soft missing-source outcome.
	_, err := r.Route(context.Background(), "/in/one.txt", "en")
	if !errors.Is(err, services.ErrMissingSource) {
		t.Fatalf("expected missing source, got %v", err)
	}
	// Routing a file that already sits in its destination is a no-op.
	placed := filepath.Join(outputRoot, "english", "two.txt")
	if _, err := r.Route(context.Background(), placed, "en"); err != nil {
		t.Fatalf("re-route in place: %v", err)
	}
	if !r.SourceExists(placed) {
		t.Fatal("in-place file disappeared")
	}
}

func TestRouteUnrecognizedLanguageIsQuiet(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, logs := newTestRouter(t, fs, false)
	writeFile(t, fs, "/in/bonjour.pdf", "bonjour")

	for _, code := range []string{"fr", "", "x1z"} {
		_, err := r.Route(context.Background(), "/in/bonjour.pdf", code)
		if !errors.Is(err, services.ErrUnrecognizedLanguage) {
			t.Fatalf("code %q: expected unrecognized, got %v", code, err)
		}
	}
	if !r.SourceExists("/in/bonjour.pdf") {
		t.Fatal("unrecognized document was moved")
	}
	if strings.Contains(logs.String(), `"level":"ERROR"`) {
		t.Fatalf("unexpected error log: %s", logs.String())
	}
	if exists, _ := afero.DirExists(fs, filepath.Join(outputRoot, "english")); exists {
		t.Fatal("directory created for unrecognized document")
	}
}

func TestRouteMissingSourceWarns(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, logs := newTestRouter(t, fs, false)

	_, err := r.Route(context.Background(), "/in/gone.pdf", "en")
	if !errors.Is(err, services.ErrMissingSource) {
		t.Fatalf("expected missing source, got %v", err)
	}
	out := logs.String()
	if !strings.Contains(out, `"event_type":"source_missing"`) || !strings.Contains(out, `"file":"/in/gone.pdf"`) {
		t.Fatalf("missing warning fields: %s", out)
	}
}

func TestRouteRefusesExistingDestination(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, logs := newTestRouter(t, fs, false)
	writeFile(t, fs, "/in/report.pdf", "new")
	writeFile(t, fs, filepath.Join(outputRoot, "english", "report.pdf"), "old")

	_, err := r.Route(context.Background(), "/in/report.pdf", "en")
	if !errors.Is(err, services.ErrRoute) {
		t.Fatalf("expected route error, got %v", err)
	}
	data, _ := afero.ReadFile(fs, filepath.Join(outputRoot, "english", "report.pdf"))
	if string(data) != "old" {
		t.Fatalf("destination overwritten: %q", data)
	}
	if !r.SourceExists("/in/report.pdf") {
		t.Fatal("source removed after failed move")
	}
	out := logs.String()
	if !strings.Contains(out, `"destination":"/out/english/report.pdf"`) || !strings.Contains(out, `"file":"/in/report.pdf"`) {
		t.Fatalf("route failure log missing identity: %s", out)
	}
}

func TestRouteMkdirFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, _ := newTestRouter(t, fs, false)
	writeFile(t, fs, "/in/a.pdf", "a")
	// A regular file where the language directory should be.
	writeFile(t, fs, filepath.Join(outputRoot, "hebrew"), "blocker")

	_, err := r.Route(context.Background(), "/in/a.pdf", "he")
	if !errors.Is(err, services.ErrRoute) {
		t.Fatalf("expected route error, got %v", err)
	}
	if !r.SourceExists("/in/a.pdf") {
		t.Fatal("source lost")
	}
}

func TestRouteDryRunLeavesFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, logs := newTestRouter(t, fs, true)
	writeFile(t, fs, "/in/a.pdf", "a")

	placement, err := r.Route(context.Background(), "/in/a.pdf", "en")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if placement.Path != filepath.Join(outputRoot, "english", "a.pdf") {
		t.Fatalf("placement = %+v", placement)
	}
	if !r.SourceExists("/in/a.pdf") {
		t.Fatal("dry run moved the file")
	}
	if exists, _ := afero.DirExists(fs, placement.Directory); exists {
		t.Fatal("dry run created a directory")
	}
	if !strings.Contains(logs.String(), "dry run") {
		t.Fatalf("dry run not logged: %s", logs.String())
	}
}

func TestRouteConcurrentWorkers(t *testing.T) {
	fs := afero.NewMemMapFs()
	r, _ := newTestRouter(t, fs, false)
	const n = 64
	for i := range n {
		writeFile(t, fs, fmt.Sprintf("/in/doc-%02d.txt", i), "x")
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := "en"
			if i%2 == 0 {
				code = "he"
			}
			if _, err := r.Route(context.Background(), fmt.Sprintf("/in/doc-%02d.txt", i), code); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Route: %v", err)
	}
	for _, dir := range []string{"hebrew", "english"} {
		entries, err := afero.ReadDir(fs, filepath.Join(outputRoot, dir))
		if err != nil {
			t.Fatalf("read %s: %v", dir, err)
		}
		if len(entries) != n/2 {
			t.Fatalf("%s holds %d files, want %d", dir, len(entries), n/2)
		}
	}
}

func TestReserveIsExclusive(t *testing.T) {
	r, _ := newTestRouter(t, afero.NewMemMapFs(), false)
	path := filepath.Join(outputRoot, "english", "same.pdf")
	if !r.reserve(path) {
		t.Fatal("first reservation refused")
	}
	if r.reserve(path) {
		t.Fatal("second reservation granted")
	}
	r.release(path)
	if !r.reserve(path) {
		t.Fatal("reservation not released")
	}
}
