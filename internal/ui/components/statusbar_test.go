package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestHintIncludesKeyAndDesc(t *testing.T) {
	out := Hint("ctrl+s", "Save")
	assert.True(t, strings.Contains(out, "Save"))
	assert.True(t, strings.Contains(out, "ctrl+s"))
}

func TestStatusBarRendersHints(t *testing.T) {
	out := StatusBar([]string{Hint("q", "Quit")}, 0)
	assert.True(t, strings.Contains(out, "Quit"))
	assert.True(t, strings.Contains(out, "q"))
}

func TestWrapSegmentsWrapsWhenNarrow(t *testing.T) {
	segments := []string{"123456", "abcdef", "ghijkl"}
	rows := wrapSegments(segments, 10)
	assert.Len(t, rows, 3)
	for _, row := range rows {
		assert.LessOrEqual(t, lipgloss.Width(row), 10)
	}
}

func TestStatusBarWrapsFormHintsToWidth(t *testing.T) {
	hints := []string{
		Hint("ctrl+s", "Save"),
		Hint("esc", "Cancel"),
		Hint("ctrl+f", "Add field"),
		Hint("ctrl+d", "Remove row"),
	}
	wide := StatusBar(hints, 200)
	assert.Equal(t, 3, lipgloss.Height(wide))

	narrow := StatusBar(hints, 30)
	assert.Greater(t, lipgloss.Height(narrow), 3)
	assert.LessOrEqual(t, lipgloss.Width(narrow), 30)
	for _, want := range []string{"Save", "ctrl+s", "Cancel", "esc", "Remove row"} {
		assert.Contains(t, narrow, want)
	}
}
