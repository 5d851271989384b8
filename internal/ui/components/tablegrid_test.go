package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestTableGridFillsWidth(t *testing.T) {
	cols := []TableColumn{
		{Header: "Code", Width: 4},
		{Header: "Name", Width: 12},
		{Header: "Rate", Width: 10, Align: lipgloss.Right},
	}
	rows := [][]string{{"CO", "Colombia", "$25.00 USD"}, {"US", "United States of America", "$1.00 USD"}}
	out := TableGridWithActiveRow(cols, rows, 50, 1)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 4)
	for _, line := range lines {
		assert.Equal(t, 50, lipgloss.Width(line))
	}
	clean := SanitizeText(out)
	assert.Contains(t, clean, "Code")
	assert.Contains(t, clean, "Colombia")
	assert.NotContains(t, clean, "United States of America")
}

func TestTableGridEdgeCases(t *testing.T) {
	assert.Empty(t, TableGrid([]TableColumn{{Header: "A", Width: 3}}, nil, 0))
	assert.Equal(t, 10, lipgloss.Width(TableGrid(nil, nil, 10)))
}

func TestRenderGridCellAlignment(t *testing.T) {
	assert.Equal(t, "ab   ", renderGridCell("ab", 5, lipgloss.Left))
	assert.Equal(t, "   ab", renderGridCell("ab", 5, lipgloss.Right))
	assert.Equal(t, " ab  ", renderGridCell("ab", 5, lipgloss.Center))
	assert.Equal(t, "abc", renderGridCell("abcdef", 3, lipgloss.Left))
}
