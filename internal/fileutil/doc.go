// Package fileutil holds filesystem primitives shared by the router: a
// verified copy and a move that never overwrites and falls back to
// copy-then-remove across filesystems. Both operate on an afero.Fs so callers
// can substitute an in-memory filesystem.
package fileutil
