package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHintsFilterByPrefix(t *testing.T) {
	t.Parallel()
	assert.Len(t, Hints(""), maxHints)
	assert.Equal(t, []string{"review:defer [days]"}, Hints("review:d"))
	assert.Equal(t, []string{"timer:pause"}, Hints("  TIMER:PA"))
	assert.Empty(t, Hints("nope"))
}

func TestPaletteSubmitTrimsInput(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	require.True(t, p.Visible())

	for _, r := range " timer:pause " {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, p.Visible())
	assert.Equal(t, PaletteSubmitMsg{Input: "timer:pause"}, cmd())
}

func TestPaletteEscCancels(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.False(t, p.Visible())
	assert.Equal(t, PaletteCancelMsg{}, cmd())
}
