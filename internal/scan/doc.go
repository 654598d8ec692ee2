// Package scan enumerates candidate documents under one or more root
// directories.
//
// Only regular files whose extension is on the allow-list are returned;
// symlinks are never followed. Excluded directories and the output tree are
// pruned. Unreadable sub-directories are logged and skipped so one bad folder
// never hides the rest of the corpus.
package scan
