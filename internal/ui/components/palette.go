package components

import "github.com/charmbracelet/lipgloss"

// Palette shared by every component. The ui package mirrors these in its
// own styles.
var (
	colorPrimary = lipgloss.Color("#2f7fb8")
	colorLabel   = lipgloss.Color("#3f8f86")
	colorBorder  = lipgloss.Color("#2a3842")
	colorText    = lipgloss.Color("#d9dcde")
	colorMuted   = lipgloss.Color("#9aa3b2")
	colorDark    = lipgloss.Color("#14171c")
	colorKeyCap  = lipgloss.Color("#8a93a8")
	colorFailure = lipgloss.Color("#e06c75")
	colorRemoved = lipgloss.Color("#ff5f6d")
	colorAdded   = lipgloss.Color("#e5c07b")
)
