// Package extract turns a document path into text.
//
// A Mux dispatches by extension: text-like files are read directly, while
// binary formats go to the Tika client. Every failure is tagged with
// services.ErrExtraction so the worker pool can count it without stopping.
package extract
