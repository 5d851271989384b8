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

type providerPersistedMsg struct {
	message string
	err     error
}

// ProviderForm is the create-provider and edit-provider surface.
type ProviderForm struct {
	client  *api.Client
	session *draft.Session[api.Provider, *draft.ProviderDraft]
	mode    draft.Mode

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

// NewProviderForm opens a session over snapshot. Create sessions stay pending
// until the country directory arrives.
func NewProviderForm(client *api.Client, mode draft.Mode, snapshot api.Provider, logger zerolog.Logger) ProviderForm {
	session := draft.NewSession[api.Provider](mode.String(), draft.NewProviderDraft(mode), logger)
	f := ProviderForm{
		client:  client,
		session: session,
		mode:    mode,
		fields:  newFieldState(),
	}
	if err := session.Open(snapshot); err != nil {
		f.err = err.Error()
	}
	return f
}

func (f *ProviderForm) useDirectory(listing directory.Listing) {
	f.source = listing.Source
	f.session.SetDirectory(listing.Entries)
}

func (f ProviderForm) Update(msg tea.Msg) (ProviderForm, tea.Cmd) {
	switch msg := msg.(type) {
	case providerPersistedMsg:
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

func (f ProviderForm) handleKeys(msg tea.KeyMsg) (ProviderForm, tea.Cmd) {
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
		switch {
		case err != nil:
			f.closed = true
		case outcome == draft.CancelNeedsConfirm:
			f.confirmCancel = true
		default:
			f.closed = true
		}
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
		f.moveFocus(1, slots)
		return f, nil
	case isUp(msg):
		f.moveFocus(-1, slots)
		return f, nil
	case isKey(msg, "ctrl+f"):
		var row int
		f.apply(func(t *draft.ProviderDraft) { row = t.AddCustomField() })
		f.focusOn(slotCustomField, row, draft.FieldCustomFieldName)
		return f, nil
	case isKey(msg, "ctrl+n"):
		if f.mode != draft.ModeCreate {
			return f, nil
		}
		var row int
		f.apply(func(t *draft.ProviderDraft) { row = t.AddService() })
		f.focusOn(slotService, row, draft.FieldServiceName)
		return f, nil
	case isKey(msg, "ctrl+d"):
		f.removeFocusedRow(slots)
		return f, nil
	}

	if len(slots) == 0 {
		return f, nil
	}
	slot := slots[clampPicker(f.focus, len(slots))]
	if slot.kind == slotCountries {
		return f.handleCountryKeys(msg, slot), nil
	}
	switch {
	case isBackspace(msg):
		f.setValue(slot, trimLastRune(f.value(slot)))
	default:
		if text, ok := typedText(msg); ok {
			f.setValue(slot, f.value(slot)+text)
		}
	}
	return f, nil
}

func (f ProviderForm) handleCountryKeys(msg tea.KeyMsg, slot formSlot) ProviderForm {
	available := f.session.Tree().AvailableCountries(slot.row)
	switch {
	case isKey(msg, "left"):
		f.picker--
	case isKey(msg, "right"):
		f.picker++
	case isEnter(msg), isKey(msg, " "):
		if len(available) == 0 {
			return f
		}
		pick := available[clampPicker(f.picker, len(available))]
		f.apply(func(t *draft.ProviderDraft) { t.AddCountry(slot.row, pick) })
		f.fields.touched[slot.path] = true
	case isBackspace(msg):
		assigned := f.session.Tree().Services()[slot.row].Countries.Items()
		if len(assigned) > 0 {
			last := assigned[len(assigned)-1].Key()
			f.apply(func(t *draft.ProviderDraft) { t.RemoveCountry(slot.row, last) })
			f.fields.touched[slot.path] = true
		}
	}
	return f
}

func (f *ProviderForm) apply(fn func(t *draft.ProviderDraft)) {
	if err := f.session.Apply(fn); err != nil {
		f.err = err.Error()
		return
	}
	f.err = ""
}

// slots lists the focusable positions in render order. Services are only
// editable on the create surface.
func (f ProviderForm) slots() []formSlot {
	tree := f.session.Tree()
	out := []formSlot{
		{kind: slotRoot, field: draft.FieldProviderName, path: draft.PathName},
		{kind: slotRoot, field: draft.FieldProviderNIT, path: draft.PathNIT},
		{kind: slotRoot, field: draft.FieldProviderEmail, path: draft.PathEmail},
	}
	for i := range tree.CustomFields() {
		out = append(out,
			formSlot{kind: slotCustomField, row: i, field: draft.FieldCustomFieldName, path: draft.RowPath(draft.PathCustomFields, i, draft.PathFieldName)},
			formSlot{kind: slotCustomField, row: i, field: draft.FieldCustomFieldValue, path: draft.RowPath(draft.PathCustomFields, i, draft.PathFieldValue)},
		)
	}
	if f.mode != draft.ModeCreate {
		return out
	}
	for i := range tree.Services() {
		out = append(out,
			formSlot{kind: slotService, row: i, field: draft.FieldServiceName, path: draft.RowPath(draft.PathServices, i, draft.PathName)},
			formSlot{kind: slotService, row: i, field: draft.FieldServiceValuePerHour, path: draft.RowPath(draft.PathServices, i, draft.PathValuePerHour)},
			formSlot{kind: slotCountries, row: i, path: draft.RowPath(draft.PathServices, i, draft.PathCountries)},
		)
	}
	return out
}

func (f ProviderForm) value(slot formSlot) string {
	tree := f.session.Tree()
	switch slot.kind {
	case slotRoot:
		return tree.Value(slot.field)
	case slotCustomField:
		rows := tree.CustomFields()
		if slot.row >= len(rows) {
			return ""
		}
		if slot.field == draft.FieldCustomFieldName {
			return rows[slot.row].Name
		}
		return rows[slot.row].Value
	case slotService:
		rows := tree.Services()
		if slot.row >= len(rows) {
			return ""
		}
		if slot.field == draft.FieldServiceName {
			return rows[slot.row].Name
		}
		return rows[slot.row].ValuePerHour
	}
	return ""
}

func (f *ProviderForm) setValue(slot formSlot, v string) {
	f.apply(func(t *draft.ProviderDraft) {
		switch slot.kind {
		case slotRoot:
			t.Set(slot.field, v)
		case slotCustomField:
			t.SetCustomField(slot.row, slot.field, v)
		case slotService:
			t.SetService(slot.row, slot.field, v)
		}
	})
	f.fields.touched[slot.path] = true
}

func (f *ProviderForm) moveFocus(delta int, slots []formSlot) {
	f.focus = formFocus(f.focus, delta, len(slots))
	f.picker = 0
	f.trackService(slots)
}

func (f *ProviderForm) focusOn(kind slotKind, row int, field draft.FieldID) {
	slots := f.slots()
	for i, s := range slots {
		if s.kind == kind && s.row == row && s.field == field {
			f.focus = i
			break
		}
	}
	f.picker = 0
	f.trackService(slots)
}

// trackService keeps the draft's current service in step with the focus.
func (f *ProviderForm) trackService(slots []formSlot) {
	if len(slots) == 0 {
		return
	}
	slot := slots[clampPicker(f.focus, len(slots))]
	if slot.kind != slotService && slot.kind != slotCountries {
		return
	}
	if f.session.Tree().CurrentService() != slot.row {
		f.apply(func(t *draft.ProviderDraft) { t.SelectService(slot.row) })
	}
}

func (f *ProviderForm) removeFocusedRow(slots []formSlot) {
	if len(slots) == 0 {
		return
	}
	slot := slots[clampPicker(f.focus, len(slots))]
	switch slot.kind {
	case slotCustomField:
		f.apply(func(t *draft.ProviderDraft) { t.RemoveCustomField(slot.row) })
	case slotService, slotCountries:
		f.apply(func(t *draft.ProviderDraft) { t.RemoveService(slot.row) })
	default:
		return
	}
	f.focus = min(f.focus, len(f.slots())-1)
	f.picker = 0
}

func (f ProviderForm) save() (ProviderForm, tea.Cmd) {
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
	client, mode := f.client, f.mode
	return f, func() tea.Msg {
		var resp *api.MessageResponse
		var err error
		if mode == draft.ModeCreate {
			resp, err = client.CreateProvider(context.Background(), payload)
		} else {
			resp, err = client.UpdateProvider(context.Background(), payload)
		}
		if err != nil {
			return providerPersistedMsg{err: fmt.Errorf("save provider: %w", err)}
		}
		return providerPersistedMsg{message: resp.Message}
	}
}

// --- View ---

func (f ProviderForm) View() string {
	title := "New Provider"
	if f.mode == draft.ModeEdit {
		title = fmt.Sprintf("Edit Provider #%d", f.session.Tree().ID())
	}
	if f.session.State() == draft.StatePending {
		return components.TitledBox(title, MutedStyle.Render("Loading countries..."), f.width)
	}

	tree := f.session.Tree()
	report := f.session.Report()
	slots := f.slots()
	focus := clampPicker(f.focus, len(slots))

	var b strings.Builder
	customHeader, serviceHeader := false, false
	for i, slot := range slots {
		switch {
		case slot.kind == slotCustomField && !customHeader:
			customHeader = true
			b.WriteString(AccentStyle.Render("Custom fields") + "\n\n")
		case (slot.kind == slotService || slot.kind == slotCountries) && !serviceHeader:
			serviceHeader = true
			b.WriteString(f.servicesHeader(report) + "\n\n")
		}
		if slot.kind == slotService && slot.field == draft.FieldServiceName {
			marker := "  "
			if tree.CurrentService() == slot.row {
				marker = "▸ "
			}
			b.WriteString(MutedStyle.Render(fmt.Sprintf("%sService %d", marker, slot.row+1)) + "\n")
		}

		problem := ""
		if f.fields.visible(slot.path) {
			problem = report.Message(slot.path)
		}
		if slot.kind == slotCountries {
			if f.fields.visible(slot.path) && report.IsMissing(slot.path) {
				problem = missingCountriesMessage()
			}
			assigned := tree.Services()[slot.row].Countries.Items()
			b.WriteString(renderCountries(assigned, tree.AvailableCountries(slot.row), f.picker, i == focus, problem))
		} else {
			b.WriteString(renderInput(slot.field.Label(), f.value(slot), i == focus, problem))
		}
		b.WriteString("\n\n")
	}

	if !customHeader {
		b.WriteString(MutedStyle.Render("No custom fields (ctrl+f to add)") + "\n\n")
	}
	if f.mode == draft.ModeCreate && !serviceHeader {
		b.WriteString(f.servicesHeader(report) + "\n")
		b.WriteString(MutedStyle.Render("No services (ctrl+n to add)") + "\n\n")
	}
	if f.mode == draft.ModeEdit {
		b.WriteString(f.renderReadOnlyServices(tree.Services(), report) + "\n\n")
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
		sections = append(sections, components.ConfirmDialog("Discard changes", "This provider has unsaved changes. Discard them?"))
	}
	return strings.Join(sections, "\n\n")
}

func (f ProviderForm) servicesHeader(report draft.Report) string {
	header := AccentStyle.Render("Services")
	if f.fields.submitted && report.IsMissing(draft.PathServices) {
		header += "\n" + FieldErrorStyle.Render("At least one service is required")
	}
	return header
}

func (f ProviderForm) renderReadOnlyServices(services []draft.ServiceRow, report draft.Report) string {
	if len(services) == 0 {
		return f.servicesHeader(report) + "\n" + MutedStyle.Render("  none")
	}
	lines := []string{AccentStyle.Render("Services") + MutedStyle.Render(" (edit from the service view)")}
	for _, s := range services {
		lines = append(lines, MutedStyle.Render(fmt.Sprintf("  %s  %s  [%s]",
			components.SanitizeOneLine(s.Name), api.FormatUSD(s.ValuePerHour), countryCodes(s.Countries.Items()))))
	}
	return strings.Join(lines, "\n")
}

// changes lists root field edits against the snapshot on the edit surface.
func (f ProviderForm) changes() []components.DiffRow {
	if f.mode != draft.ModeEdit || !f.session.Dirty() {
		return nil
	}
	snap := f.session.Snapshot()
	tree := f.session.Tree()
	var rows []components.DiffRow
	for _, c := range []struct {
		field draft.FieldID
		from  string
	}{
		{draft.FieldProviderName, snap.Name},
		{draft.FieldProviderNIT, snap.NIT},
		{draft.FieldProviderEmail, snap.Email},
	} {
		if to := tree.Value(c.field); to != c.from {
			rows = append(rows, components.DiffRow{Label: c.field.Label(), From: c.from, To: to})
		}
	}
	return rows
}

func (f ProviderForm) hints() []string {
	if f.confirmCancel {
		return []string{
			components.Hint("y", "Discard"),
			components.Hint("n", "Keep editing"),
		}
	}
	hints := []string{
		components.Hint("↑/↓", "Fields"),
		components.Hint("ctrl+f", "Add field"),
	}
	if f.mode == draft.ModeCreate {
		hints = append(hints,
			components.Hint("ctrl+n", "Add service"),
			components.Hint("←/→ enter", "Countries"),
		)
	}
	return append(hints,
		components.Hint("ctrl+d", "Remove row"),
		components.Hint("ctrl+s", "Save"),
		components.Hint("esc", "Cancel"),
	)
}
