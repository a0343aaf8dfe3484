package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const separator = "---\n"

// Split separates a note into its raw frontmatter block and body. Notes
// without frontmatter return an empty block.
func Split(content string) (string, string, error) {
	if !strings.HasPrefix(content, separator) {
		return "", content, nil
	}
	rest := strings.TrimPrefix(content, separator)
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		return "", "", fmt.Errorf("invalid frontmatter: missing closing separator")
	}
	return rest[:idx], rest[idx+len("\n---\n"):], nil
}

// Decode parses the frontmatter of content into meta and returns the body.
func Decode(content string, meta any) (string, error) {
	raw, body, err := Split(content)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return body, nil
	}
	if err := yaml.Unmarshal([]byte(raw), meta); err != nil {
		return "", fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return body, nil
}

// Render writes meta as a yaml frontmatter block followed by body.
func Render(meta any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(separator)
	buf.Write(raw)
	buf.WriteString(separator)
	if !strings.HasPrefix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(body)
	return buf.String(), nil
}
