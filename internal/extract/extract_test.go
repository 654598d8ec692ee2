package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"lingosort/internal/services"
)

func TestMuxDispatchesByExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/in/notes.TXT", []byte("\ufeffplain words"), 0o644)

	var tikaCalls []string
	tika := Func(func(_ context.Context, path string) (string, error) {
		tikaCalls = append(tikaCalls, path)
		return "from tika", nil
	})
	mux := NewMux(tika)
	mux.Handle([]string{"txt", ".md", ""}, NewPlainText(fs))

	text, err := mux.Extract(context.Background(), "/in/notes.TXT")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "plain words" {
		t.Fatalf("expected BOM stripped plain text, got %q", text)
	}
	text, err = mux.Extract(context.Background(), "/in/cv.pdf")
	if err != nil || text != "from tika" {
		t.Fatalf("expected fallback to tika, got %q, %v", text, err)
	}
	if len(tikaCalls) != 1 || tikaCalls[0] != "/in/cv.pdf" {
		t.Fatalf("unexpected tika calls %v", tikaCalls)
	}
}

func TestMuxWithoutFallback(t *testing.T) {
	_, err := NewMux(nil).Extract(context.Background(), "/in/cv.pdf")
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestPlainTextInvalidUTF8AndMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/bad.txt", []byte{'o', 'k', 0xff, 0xfe, '!'}, 0o644)
	reader := NewPlainText(fs)

	text, err := reader.Extract(context.Background(), "/bad.txt")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "ok!" {
		t.Fatalf("expected invalid bytes dropped, got %q", text)
	}
	if _, err := reader.Extract(context.Background(), "/gone.txt"); !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := reader.Extract(ctx, "/bad.txt"); !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error on cancelled context, got %v", err)
	}
}
