package ui

import (
	"fmt"
	"strings"

	"github.com/tekus/provider-console/internal/api"
	"github.com/tekus/provider-console/internal/directory"
	"github.com/tekus/provider-console/internal/draft"
	"github.com/tekus/provider-console/internal/ui/components"
)

// slotKind is what a focusable form position edits.
type slotKind int

const (
	slotRoot slotKind = iota
	slotCustomField
	slotService
	slotCountries
)

// formSlot is one focusable position in an editing surface.
type formSlot struct {
	kind  slotKind
	row   int
	field draft.FieldID
	path  string
}

// fieldState tracks which inputs have been edited so errors only show once
// the user has touched them or tried to save.
type fieldState struct {
	touched   map[string]bool
	submitted bool
}

func newFieldState() fieldState {
	return fieldState{touched: map[string]bool{}}
}

func (s fieldState) visible(path string) bool {
	return s.submitted || s.touched[path]
}

func renderInput(label, value string, focused bool, problem string) string {
	var b strings.Builder
	if focused {
		b.WriteString(SelectedStyle.Render("> " + label + ":"))
		b.WriteString("\n")
		b.WriteString(NormalStyle.Render("  " + components.SanitizeOneLine(value) + "█"))
	} else {
		b.WriteString(MutedStyle.Render("  " + label + ":"))
		b.WriteString("\n")
		b.WriteString(NormalStyle.Render("  " + components.SanitizeOneLine(value)))
	}
	if problem != "" {
		b.WriteString("\n")
		b.WriteString(FieldErrorStyle.Render(problem))
	}
	return b.String()
}

// renderCountries shows the assigned chips and, when focused, the candidate
// picker.
func renderCountries(assigned, available []api.Country, picker int, focused bool, problem string) string {
	var b strings.Builder
	label := "Countries:"
	if focused {
		b.WriteString(SelectedStyle.Render("> " + label))
	} else {
		b.WriteString(MutedStyle.Render("  " + label))
	}
	b.WriteString("\n  ")
	if len(assigned) == 0 {
		b.WriteString(MutedStyle.Render("none"))
	}
	for i, c := range assigned {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(ChipStyle.Render(c.Key()))
	}
	if focused {
		b.WriteString("\n  ")
		if len(available) == 0 {
			b.WriteString(MutedStyle.Render("no more countries to add"))
		} else {
			c := available[clampPicker(picker, len(available))]
			b.WriteString(AccentStyle.Render(fmt.Sprintf("‹ %s (%s) ›", c.Name, c.Key())))
			b.WriteString(MutedStyle.Render(fmt.Sprintf("  %d available", len(available))))
		}
	}
	if problem != "" {
		b.WriteString("\n")
		b.WriteString(FieldErrorStyle.Render(problem))
	}
	return b.String()
}

func clampPicker(picker, n int) int {
	if n == 0 {
		return 0
	}
	return ((picker % n) + n) % n
}

func missingCountriesMessage() string {
	return "At least one country is required"
}

// directoryNote describes where the candidate countries came from.
func directoryNote(source directory.Source) string {
	if source == directory.SourceFallback {
		return WarningStyle.Render("Using the built-in country list")
	}
	return ""
}

// sessionStatus summarises the session for the form footer.
func sessionStatus(dirty, valid, saving bool) string {
	switch {
	case saving:
		return MutedStyle.Render("Saving...")
	case !dirty:
		return MutedStyle.Render("No changes")
	case !valid:
		return WarningStyle.Render("Unsaved changes · fix errors to save")
	}
	return SuccessStyle.Render("Unsaved changes · ready to save")
}

func formFocus(focus, delta, n int) int {
	if n == 0 {
		return 0
	}
	return ((focus+delta)%n + n) % n
}
