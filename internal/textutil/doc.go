// Package textutil provides the text helpers the classification pipeline
// shares: selecting the excerpt that is handed to the language detector and
// turning configuration values into filesystem-safe directory tokens.
//
// Sample is a pure function. The excerpt is a fixed-size window of
// whitespace-delimited words centered on the middle of the document, which
// keeps headers and boilerplate from dominating detection while bounding the
// cost of every classification call.
package textutil
