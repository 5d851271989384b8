package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tekus/provider-console/internal/api"
	"github.com/tekus/provider-console/internal/directory"
	"github.com/tekus/provider-console/internal/draft"
	"github.com/tekus/provider-console/internal/ui/components"
)

type servicePersistedMsg struct {
	message string
	err     error
}

// ServiceForm edits one service of a provider. Saving writes the whole
// provider back with that service replaced.
type ServiceForm struct {
	client   *api.Client
	session  *draft.Session[api.Service, *draft.ServiceDraft]
	provider api.Provider
	index    int

	focus         int
	picker        int
	fields        fieldState
	confirmCancel bool
	source        directory.Source
	err           string
	message       string
	closed        bool
	width         int
}

func NewServiceForm(client *api.Client, provider api.Provider, index int, logger zerolog.Logger) ServiceForm {
	session := draft.NewSession[api.Service]("edit-service", draft.NewServiceDraft(), logger)
	f := ServiceForm{
		client:   client,
		session:  session,
		provider: provider.Clone(),
		index:    index,
		fields:   newFieldState(),
	}
	if index < 0 || index >= len(provider.Services) {
		f.err = "Service no longer exists"
		return f
	}
	if err := session.Open(provider.Services[index]); err != nil {
		f.err = err.Error()
	}
	return f
}

func (f *ServiceForm) useDirectory(listing directory.Listing) {
	f.source = listing.Source
	f.session.SetDirectory(listing.Entries)
}

func (f ServiceForm) slots() []formSlot {
	return []formSlot{
		{kind: slotService, field: draft.FieldServiceName, path: draft.PathName},
		{kind: slotService, field: draft.FieldServiceValuePerHour, path: draft.PathValuePerHour},
		{kind: slotCountries, path: draft.PathCountries},
	}
}

func (f ServiceForm) Update(msg tea.Msg) (ServiceForm, tea.Cmd) {
	switch msg := msg.(type) {
	case servicePersistedMsg:
		if _, err := f.session.FinishSave(msg.err); err != nil {
			f.err = err.Error()
			return f, nil
		}
		f.err = ""
		f.message = msg.message
		f.closed = true
		return f, nil
	case tea.KeyMsg:
		return f.handleKeys(msg)
	}
	return f, nil
}

func (f ServiceForm) handleKeys(msg tea.KeyMsg) (ServiceForm, tea.Cmd) {
	if f.session.Loading() {
		return f, nil
	}
	if f.confirmCancel {
		switch {
		case isKey(msg, "y"):
			if err := f.session.ConfirmCancel(); err == nil {
				f.closed = true
			}
			f.confirmCancel = false
		case isKey(msg, "n"), isBack(msg):
			f.confirmCancel = false
		}
		return f, nil
	}
	if isBack(msg) {
		outcome, err := f.session.RequestCancel()
		if err == nil && outcome == draft.CancelNeedsConfirm {
			f.confirmCancel = true
			return f, nil
		}
		f.closed = true
		return f, nil
	}
	if f.session.State() != draft.StateReady {
		return f, nil
	}

	slots := f.slots()
	switch {
	case isSave(msg):
		return f.save()
	case isDown(msg):
		f.focus = formFocus(f.focus, 1, len(slots))
		f.picker = 0
		return f, nil
	case isUp(msg):
		f.focus = formFocus(f.focus, -1, len(slots))
		f.picker = 0
		return f, nil
	}

	slot := slots[clampPicker(f.focus, len(slots))]
	tree := f.session.Tree()
	if slot.kind == slotCountries {
		switch {
		case isKey(msg, "left"):
			f.picker--
		case isKey(msg, "right"):
			f.picker++
		case isEnter(msg), isKey(msg, " "):
			available := tree.AvailableCountries()
			if len(available) > 0 {
				pick := available[clampPicker(f.picker, len(available))]
				f.apply(func(t *draft.ServiceDraft) { t.AddCountry(pick) })
				f.fields.touched[slot.path] = true
			}
		case isBackspace(msg):
			if assigned := tree.Countries(); len(assigned) > 0 {
				last := assigned[len(assigned)-1].Key()
				f.apply(func(t *draft.ServiceDraft) { t.RemoveCountry(last) })
				f.fields.touched[slot.path] = true
			}
		}
		return f, nil
	}

	value := tree.Value(slot.field)
	switch {
	case isBackspace(msg):
		value = trimLastRune(value)
	default:
		text, ok := typedText(msg)
		if !ok {
			return f, nil
		}
		value += text
	}
	f.apply(func(t *draft.ServiceDraft) { t.Set(slot.field, value) })
	f.fields.touched[slot.path] = true
	return f, nil
}

func (f *ServiceForm) apply(fn func(t *draft.ServiceDraft)) {
	if err := f.session.Apply(fn); err != nil {
		f.err = err.Error()
		return
	}
	f.err = ""
}

func (f ServiceForm) save() (ServiceForm, tea.Cmd) {
	f.fields.submitted = true
	payload, err := f.session.BeginSave()
	switch {
	case errors.Is(err, draft.ErrInvalid):
		f.err = "Fix the highlighted fields before saving"
		return f, nil
	case errors.Is(err, draft.ErrUnchanged):
		f.err = "No changes to save"
		return f, nil
	case err != nil:
		f.err = err.Error()
		return f, nil
	}
	f.err = ""
	updated := f.provider.Clone()
	updated.Services[f.index] = payload
	client := f.client
	return f, func() tea.Msg {
		resp, err := client.UpdateProvider(context.Background(), updated)
		if err != nil {
			return servicePersistedMsg{err: fmt.Errorf("save service: %w", err)}
		}
		return servicePersistedMsg{message: resp.Message}
	}
}

func (f ServiceForm) View() string {
	title := "Edit Service"
	if f.provider.Name != "" {
		title += " · " + components.SanitizeOneLine(f.provider.Name)
	}
	switch f.session.State() {
	case draft.StatePending:
		return components.TitledBox(title, MutedStyle.Render("Loading countries..."), f.width)
	case draft.StateIdle:
		return components.ErrorBox(title, f.err, f.width)
	}

	tree := f.session.Tree()
	report := f.session.Report()
	slots := f.slots()
	focus := clampPicker(f.focus, len(slots))

	var b strings.Builder
	for i, slot := range slots {
		problem := ""
		if f.fields.visible(slot.path) {
			problem = report.Message(slot.path)
		}
		if slot.kind == slotCountries {
			if f.fields.visible(slot.path) && report.IsMissing(slot.path) {
				problem = missingCountriesMessage()
			}
			b.WriteString(renderCountries(tree.Countries(), tree.AvailableCountries(), f.picker, i == focus, problem))
		} else {
			b.WriteString(renderInput(slot.field.Label(), tree.Value(slot.field), i == focus, problem))
		}
		b.WriteString("\n\n")
	}
	if note := directoryNote(f.source); note != "" {
		b.WriteString(note + "\n")
	}
	b.WriteString(sessionStatus(f.session.Dirty(), f.session.Valid(), f.session.Loading()))
	if f.err != "" {
		b.WriteString("\n" + ErrorStyle.Render(f.err))
	}

	sections := []string{components.ActiveTitledBox(title, b.String(), f.width)}
	if diff := f.changes(); len(diff) > 0 {
		sections = append(sections, components.DiffTable("Changes", diff, f.width))
	}
	if f.confirmCancel {
		sections = append(sections, components.ConfirmDialog("Discard changes", "This service has unsaved changes. Discard them?"))
	}
	return strings.Join(sections, "\n\n")
}

func (f ServiceForm) changes() []components.DiffRow {
	if !f.session.Dirty() {
		return nil
	}
	snap := f.session.Snapshot()
	tree := f.session.Tree()
	var rows []components.DiffRow
	if v := tree.Value(draft.FieldServiceName); v != snap.Name {
		rows = append(rows, components.DiffRow{Label: draft.FieldServiceName.Label(), From: snap.Name, To: v})
	}
	if v := tree.Value(draft.FieldServiceValuePerHour); v != snap.ValuePerHourUSD {
		rows = append(rows, components.DiffRow{Label: draft.FieldServiceValuePerHour.Label(), From: snap.ValuePerHourUSD, To: v})
	}
	if from, to := countryCodes(snap.Countries), countryCodes(tree.Countries()); from != to {
		rows = append(rows, components.DiffRow{Label: "Countries", From: from, To: to})
	}
	return rows
}

func (f ServiceForm) hints() []string {
	if f.confirmCancel {
		return []string{
			components.Hint("y", "Discard"),
			components.Hint("n", "Keep editing"),
		}
	}
	return []string{
		components.Hint("↑/↓", "Fields"),
		components.Hint("←/→ enter", "Countries"),
		components.Hint("ctrl+s", "Save"),
		components.Hint("esc", "Cancel"),
	}
}
