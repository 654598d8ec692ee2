// Command lingosort classifies documents by language and moves them into
// per-language directories.
//
// The run command scans the configured roots, extracts text through Apache
// Tika (or directly for plain-text files), detects the language of a short
// excerpt and routes each document according to the routing table. The
// sample, history and languages commands inspect a single file, the SQLite
// ledger of past runs and the routing table without moving anything.
package main
