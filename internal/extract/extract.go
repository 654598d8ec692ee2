package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"

	"lingosort/internal/services"
)

// Extractor returns the text content of a document.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Func adapts a function to Extractor.
type Func func(ctx context.Context, path string) (string, error)

// Extract implements Extractor.
func (f Func) Extract(ctx context.Context, path string) (string, error) { return f(ctx, path) }

// Mux routes documents to extractors by lower-cased extension.
type Mux struct {
	byExt    map[string]Extractor
	fallback Extractor
}

// NewMux returns a mux that sends unmatched extensions to fallback.
func NewMux(fallback Extractor) *Mux {
	return &Mux{byExt: make(map[string]Extractor), fallback: fallback}
}

// Handle registers e for every extension in exts.
func (m *Mux) Handle(exts []string, e Extractor) {
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m.byExt[ext] = e
	}
}

// Extract implements Extractor.
func (m *Mux) Extract(ctx context.Context, path string) (string, error) {
	e, ok := m.byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		e = m.fallback
	}
	if e == nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "dispatch", fmt.Sprintf("no extractor for %s", path), nil)
	}
	return e.Extract(ctx, path)
}

// PlainText reads UTF-8 text files. Invalid byte sequences are dropped.
type PlainText struct {
	fs afero.Fs
}

// NewPlainText returns a reader over fs.
func NewPlainText(fs afero.Fs) *PlainText {
	return &PlainText{fs: fs}
}

// Extract implements Extractor.
func (p *PlainText) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "read", path, err)
	}
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "read", path, err)
	}
	text := string(data)
	text = strings.TrimPrefix(text, "\ufeff")
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	return text, nil
}
