package slug_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cadence/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "organic-chemistry-alkenes", slug.Make("  Organic Chemistry: Alkenes! "))
	assert.Equal(t, "untitled", slug.Make("???"))
	assert.Equal(t, "caf-2", slug.Make("Café #2"))

	long := slug.Make(strings.Repeat("ab ", 40))
	assert.LessOrEqual(t, len(long), slug.MaxLen)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestNoteFile(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 3, 10, 9, 30, 15, 0, time.UTC)
	assert.Equal(t, "093015-biology-cell-membranes.md", slug.NoteFile(at, "Biology", "Cell membranes"))
}
