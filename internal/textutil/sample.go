package textutil

import "strings"

// DefaultSampleWindow is the number of words handed to the language detector.
const DefaultSampleWindow = 40

// Sample returns up to window words centered on the midpoint of text, joined
// with single spaces. Empty or whitespace-only text yields "". A window <= 0
// falls back to DefaultSampleWindow.
func Sample(text string, window int) string {
	if window <= 0 {
		window = DefaultSampleWindow
	}
	words := strings.Fields(text)
	total := len(words)
	if total == 0 {
		return ""
	}

	mid := total / 2
	start := max(mid-window/2, 0)
	end := min(start+window, total)
	return strings.Join(words[start:end], " ")
}

// WordCount reports how many whitespace-delimited words text contains.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
