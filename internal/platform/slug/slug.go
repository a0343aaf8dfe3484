package slug

import (
	"strings"
	"time"
)

// MaxLen caps a slug in bytes.
const MaxLen = 48

// Make lowercases input and joins its ASCII letter and digit runs with
// single dashes. An input with no such runs becomes "untitled".
func Make(input string) string {
	var b strings.Builder
	gap := false
	for _, r := range strings.ToLower(input) {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			gap = b.Len() > 0
			continue
		}
		if gap {
			if b.Len()+2 > MaxLen {
				break
			}
			b.WriteByte('-')
			gap = false
		}
		if b.Len() >= MaxLen {
			break
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}

// NoteFile names a markdown note written at the given time, e.g.
// "093015-biology-cell-membranes.md".
func NoteFile(at time.Time, words ...string) string {
	return at.Format("150405") + "-" + Make(strings.Join(words, " ")) + ".md"
}
