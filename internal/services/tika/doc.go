// Package tika extracts document text through an Apache Tika server.
//
// Every request passes through a shared token-bucket limiter so a large
// worker pool cannot flood the server, and is bounded by a per-file timeout.
// Tika may answer with XHTML or plain text; markup is flattened to text
// before it reaches the sampler.
package tika
