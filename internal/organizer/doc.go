// Package organizer places classified documents into per-language
// directories under the output root.
//
// The Router owns the language → directory table, creates destination
// directories lazily, and moves files with fileutil.Move so that existing
// files are never replaced. Every failure is returned as a tagged error
// (services.ErrMissingSource, services.ErrUnrecognizedLanguage or
// services.ErrRoute) so the worker pool can record an outcome and carry on
// with the next document.
package organizer
