package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tekus/provider-console/internal/ui/components"
)

func TestRenderBannerIncludesSubtitle(t *testing.T) {
	out := RenderBanner()
	assert.NotContains(t, out, "\x1b]")

	clean := components.SanitizeText(out)
	assert.Contains(t, clean, "Provider Administration")
	assert.Contains(t, clean, "Command-Line Console")
	assert.Contains(t, clean, "─")
	assert.Contains(t, clean, "████████")
}
