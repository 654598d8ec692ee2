// Package langdetect adapts a language identification model into the
// classifier used by the worker pool.
//
// New performs every one-time setup step (seeding, model preparation) before
// returning, so the resulting Classifier is immutable and can be shared by all
// workers. Classify never fails: model errors, panics, empty input and
// low-confidence results all collapse to the Unrecognized result, leaving the
// document where it is.
package langdetect
