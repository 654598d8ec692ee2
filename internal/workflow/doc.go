// Package workflow runs the per-document pipeline on a fixed pool of
// workers.
//
// Each worker pulls a scan.FileTask from the shared work queue and takes it
// through extraction, sampling, classification and routing. Whatever happens
// along the way (an extractor error, an unknown language, a panic in a
// collaborator) is turned into an Outcome and recorded; the task is then
// marked done so that the queue's Join barrier always returns. Stage
// collaborators are interfaces so tests can drive the pool with fakes.
package workflow
