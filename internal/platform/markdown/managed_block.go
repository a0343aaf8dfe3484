package markdown

import "strings"

// ReplaceBlock swaps the text between startMarker and the first endMarker
// after it for generated. Without a complete marker pair a fresh block is
// appended. Text outside the markers is left as the user wrote it.
func ReplaceBlock(body, startMarker, endMarker, generated string) string {
	block := startMarker + "\n" + generated + "\n" + endMarker
	if before, rest, ok := strings.Cut(body, startMarker); ok {
		if _, after, ok := strings.Cut(rest, endMarker); ok {
			return before + block + after
		}
	}
	switch {
	case strings.TrimSpace(body) == "":
		return block + "\n"
	case strings.HasSuffix(body, "\n"):
		return body + "\n" + block + "\n"
	}
	return body + "\n\n" + block + "\n"
}
