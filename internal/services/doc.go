// Package services defines the shared plumbing between the classification
// pipeline and its external collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, worker numbers, stage names and the
//     file being processed so every log line carries the same subject.
//   - Structured error markers plus the Wrap helper that let the worker pool
//     map any per-file failure onto a stable outcome (missing source,
//     extraction failure, unrecognized language, route failure).
//
// The sub-packages hold the concrete collaborators: tika (document text
// extraction through an Apache Tika server) and llm (seeded language
// classification through an OpenAI-compatible endpoint).
package services
