package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers. Every error that crosses a pipeline stage wraps exactly
// one of them so the worker can map it to a document outcome.
var (
	// ErrMissingSource: the document vanished between scan and processing.
	ErrMissingSource = errors.New("source missing")
	// ErrExtraction: no text could be obtained from the document.
	ErrExtraction = errors.New("extraction failed")
	// ErrUnrecognizedLanguage: detection succeeded but has no routing entry.
	ErrUnrecognizedLanguage = errors.New("unrecognized language")
	// ErrRoute: the document could not be moved into its directory.
	ErrRoute = errors.New("route failed")
	// ErrConfiguration aborts the whole batch before anything is queued.
	ErrConfiguration = errors.New("configuration error")
	// ErrCancelled: the run was interrupted before the document was handled.
	ErrCancelled = errors.New("cancelled")
)

// Wrap tags err with marker and prefixes it with "stage: operation: message".
// Empty parts are skipped. A nil marker defaults to ErrExtraction.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrExtraction
	}
	detail := joinNonEmpty(stage, operation, message)
	if detail == "" {
		detail = "service failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// IsFatal reports whether err must abort the batch rather than a single file.
// Only configuration problems qualify.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ": ")
}
