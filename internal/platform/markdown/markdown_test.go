package markdown_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadence/internal/platform/markdown"
)

type noteMeta struct {
	ID    string `yaml:"id"`
	Topic string `yaml:"topic"`
}

func TestRenderThenDecode(t *testing.T) {
	t.Parallel()
	rendered, err := markdown.Render(noteMeta{ID: "ev-1", Topic: "Limits"}, "# Limits\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rendered, "---\n"))

	meta := noteMeta{}
	body, err := markdown.Decode(rendered, &meta)
	require.NoError(t, err)
	assert.Equal(t, "ev-1", meta.ID)
	assert.Equal(t, "\n# Limits\n", body)
}

func TestDecodeWithoutFrontmatter(t *testing.T) {
	t.Parallel()
	meta := noteMeta{}
	body, err := markdown.Decode("plain body", &meta)
	require.NoError(t, err)
	assert.Equal(t, "plain body", body)
	assert.Empty(t, meta.ID)
}

func TestDecodeRejectsUnterminatedFrontmatter(t *testing.T) {
	t.Parallel()
	_, err := markdown.Decode("---\nid: x\nbody", &noteMeta{})
	require.Error(t, err)
}

func TestReplaceBlock(t *testing.T) {
	t.Parallel()
	const start, end = "<!-- s -->", "<!-- e -->"
	body := markdown.ReplaceBlock("notes\n", start, end, "one")
	assert.Equal(t, "notes\n\n<!-- s -->\none\n<!-- e -->\n", body)

	body = markdown.ReplaceBlock(body, start, end, "two")
	assert.Equal(t, "notes\n\n<!-- s -->\ntwo\n<!-- e -->\n", body)

	assert.Equal(t, "<!-- s -->\nx\n<!-- e -->\n", markdown.ReplaceBlock("  ", start, end, "x"))

	// An end marker ahead of the start marker does not close a block.
	assert.Equal(t, "<!-- e --> <!-- s -->\n\n<!-- s -->\ny\n<!-- e -->\n",
		markdown.ReplaceBlock("<!-- e --> <!-- s -->", start, end, "y"))
}
