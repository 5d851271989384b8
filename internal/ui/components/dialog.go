package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2).
			Width(44)

	dialogTitleStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	dialogHintStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// ConfirmDialog renders a yes/no confirmation.
func ConfirmDialog(title, message string) string {
	body := dialogHintStyle.Render(SanitizeText(message))
	hint := dialogHintStyle.Render("\ny: confirm | n: cancel")
	return dialogStyle.Render(dialogTitleStyle.Render(title) + "\n\n" + body + hint)
}

// InputDialog renders a single-line text prompt with a block cursor.
func InputDialog(title, input string) string {
	field := lipgloss.NewStyle().
		Foreground(colorLabel).
		Render("> " + SanitizeOneLine(input) + "█")
	hint := dialogHintStyle.Render("\nenter: submit | esc: cancel")
	return dialogStyle.Render(dialogTitleStyle.Render(title) + "\n\n" + field + hint)
}

// ConfirmPreviewDialog renders a confirmation with a summary of what is
// affected and, optionally, the pending changes.
func ConfirmPreviewDialog(title string, summary []TableRow, diffs []DiffRow, width int) string {
	sections := make([]string, 0, 3)
	if len(summary) > 0 {
		sections = append(sections, Table("Summary", summary, width))
	}
	if len(diffs) > 0 {
		sections = append(sections, DiffTable("Changes", diffs, width))
	}
	sections = append(sections, dialogHintStyle.Render("y: confirm | n: cancel"))
	return TitledBox(title, strings.Join(sections, "\n\n"), width)
}
