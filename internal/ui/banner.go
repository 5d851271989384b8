package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const bannerArt = `
 ████████ ███████ ██   ██ ██    ██ ███████
    ██    ██      ██  ██  ██    ██ ██
    ██    █████   █████   ██    ██ ███████
    ██    ██      ██  ██  ██    ██      ██
    ██    ███████ ██   ██  ██████  ███████`

const bannerSubtitle = "Provider Administration • Command-Line Console"

// RenderBanner returns the styled banner with its subtitle and underline.
func RenderBanner() string {
	lines := strings.Split(strings.TrimPrefix(bannerArt, "\n"), "\n")

	blockWidth := lipgloss.Width(bannerSubtitle)
	var art strings.Builder
	for _, line := range lines {
		blockWidth = max(blockWidth, lipgloss.Width(line))
		art.WriteString(BannerStyle.Render(line) + "\n")
	}

	centered := lipgloss.NewStyle().Width(blockWidth).Align(lipgloss.Center)
	subtitle := centered.Foreground(ColorMuted).Render(bannerSubtitle)
	underline := centered.Foreground(ColorBorder).Render(strings.Repeat("─", lipgloss.Width(bannerSubtitle)))

	return "\n" + art.String() + "\n" + subtitle + "\n" + underline + "\n"
}
