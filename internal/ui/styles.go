package ui

import "github.com/charmbracelet/lipgloss"

// --- Theme Colors ---

var (
	ColorPrimary    = lipgloss.Color("#2f7fb8") // tekus blue
	ColorSecondary  = lipgloss.Color("#3f8f86") // teal
	ColorAccent     = lipgloss.Color("#c9a227") // gold
	ColorBackground = lipgloss.Color("#14171c") // dark
	ColorText       = lipgloss.Color("#d9dcde")
	ColorMuted      = lipgloss.Color("#9aa3b2")
	ColorSuccess    = lipgloss.Color("#3f866b")
	ColorError      = lipgloss.Color("#e06c75")
	ColorWarning    = lipgloss.Color("#c78854")
	ColorBorder     = lipgloss.Color("#2a3842")
)

// --- Reusable Styles ---

var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(ColorBackground).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	TabInactiveStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	// FieldErrorStyle renders the inline message under an invalid input.
	FieldErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			PaddingLeft(2)

	// ChipStyle renders an assigned country.
	ChipStyle = lipgloss.NewStyle().
			Foreground(ColorBackground).
			Background(ColorSecondary).
			Padding(0, 1)
)
