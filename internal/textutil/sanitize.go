package textutil

import (
	"strings"
	"unicode"
)

// DirName turns a routing table value into a single path element. Letters in
// any script are lowercased and kept, as are digits, '-' and '_'. Runs of
// anything else collapse to one underscore, so a value can never name a
// parent directory or a nested path. Returns "unknown" when nothing usable
// remains.
func DirName(value string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(value) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSep = true
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
