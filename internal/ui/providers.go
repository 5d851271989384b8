package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tekus/provider-console/internal/api"
	"github.com/tekus/provider-console/internal/directory"
	"github.com/tekus/provider-console/internal/draft"
	"github.com/tekus/provider-console/internal/selection"
	"github.com/tekus/provider-console/internal/ui/components"
)

// --- Messages ---

type providersLoadedMsg struct{ items []api.Provider }
type providerDeletedMsg struct {
	id      int
	message string
}
type directoryLoadedMsg struct{ listing directory.Listing }

// --- View States ---

type providersView int

const (
	providersViewList providersView = iota
	providersViewDetail
	providersViewService
	providersViewForm
	providersViewServiceForm
)

// --- Providers Model ---

// ProvidersModel is the provider list and everything opened from it: the
// provider detail, the service detail and the three editing surfaces.
type ProvidersModel struct {
	client *api.Client
	loader *directory.Loader
	logger zerolog.Logger

	allItems []api.Provider
	items    []api.Provider
	list     *components.List
	loading  bool
	view     providersView
	width    int
	height   int

	filtering bool
	filter    string

	detailID      int
	serviceList   *components.List
	confirmDelete bool
	deleting      bool

	providerSlot *selection.Slot[api.Provider]
	serviceSlot  *selection.Slot[api.Service]

	// service detail
	service        *api.Service
	serviceIndex   int
	serviceCh      <-chan api.Service
	serviceCancel  func()
	serviceGen     int
	confirmService bool

	form        ProviderForm
	formReturn  providersView
	serviceForm ServiceForm
}

// NewProvidersModel builds the providers UI model.
func NewProvidersModel(client *api.Client, loader *directory.Loader, logger zerolog.Logger) ProvidersModel {
	return ProvidersModel{
		client:       client,
		loader:       loader,
		logger:       logger,
		list:         components.NewList(12),
		serviceList:  components.NewList(8),
		view:         providersViewList,
		providerSlot: selection.New[api.Provider](),
		serviceSlot:  selection.New[api.Service](),
	}
}

func (m ProvidersModel) Init() tea.Cmd {
	if m.client == nil {
		return nil
	}
	return m.loadProviders
}

func (m ProvidersModel) Update(msg tea.Msg) (ProvidersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case providersLoadedMsg:
		m.loading = false
		m.allItems = msg.items
		m.applyFilter()
		m.refreshDetail()
		return m, nil
	case providerDeletedMsg:
		m.deleting = false
		m.confirmDelete = false
		m.removeLocal(msg.id)
		if m.detailID == msg.id {
			m.closeService()
			m.providerSlot.Clear()
			m.detailID = 0
			m.view = providersViewList
		}
		return m, toastCmd("success", msg.message)
	case serviceDeletedMsg:
		m.confirmService = false
		m.closeService()
		m.view = providersViewDetail
		m.loading = true
		return m, tea.Batch(m.loadProviders, toastCmd("success", msg.message))
	case serviceSelectedMsg:
		return m.handleServiceSelected(msg)
	case directoryLoadedMsg:
		return m.handleDirectory(msg)
	case providerPersistedMsg:
		if m.view != providersViewForm {
			return m, nil
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m.afterForm(cmd)
	case servicePersistedMsg:
		if m.view != providersViewServiceForm {
			return m, nil
		}
		var cmd tea.Cmd
		m.serviceForm, cmd = m.serviceForm.Update(msg)
		return m.afterServiceForm(cmd)
	case errMsg:
		m.loading = false
		m.deleting = false
		m.confirmDelete = false
		m.confirmService = false
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case providersViewForm:
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m.afterForm(cmd)
		case providersViewServiceForm:
			var cmd tea.Cmd
			m.serviceForm, cmd = m.serviceForm.Update(msg)
			return m.afterServiceForm(cmd)
		}
		if m.deleting {
			return m, nil
		}
		if m.confirmDelete {
			return m.handleDeleteConfirmKeys(msg)
		}
		switch m.view {
		case providersViewDetail:
			return m.handleDetailKeys(msg)
		case providersViewService:
			return m.handleServiceKeys(msg)
		default:
			if m.filtering {
				return m.handleFilterKeys(msg)
			}
			return m.handleListKeys(msg)
		}
	}
	return m, nil
}

func (m ProvidersModel) View() string {
	if m.confirmDelete {
		return m.renderDeleteConfirm()
	}
	switch m.view {
	case providersViewDetail:
		return m.renderDetail()
	case providersViewService:
		return m.renderService()
	case providersViewForm:
		return m.form.View()
	case providersViewServiceForm:
		return m.serviceForm.View()
	}
	body := m.renderList()
	if m.filtering {
		body = components.Indent(components.InputDialog("Filter providers", m.filter), 1) + "\n\n" + body
	}
	return body
}

// --- Loading ---

func (m ProvidersModel) loadProviders() tea.Msg {
	items, err := m.client.ListProviders(context.Background())
	if err != nil {
		return errMsg{fmt.Errorf("load providers: %w", err)}
	}
	return providersLoadedMsg{items: items}
}

func (m ProvidersModel) loadDirectory() tea.Msg {
	return directoryLoadedMsg{listing: m.loader.Countries(context.Background())}
}

func (m *ProvidersModel) applyFilter() {
	m.items = make([]api.Provider, 0, len(m.allItems))
	for _, p := range m.allItems {
		if p.Matches(m.filter) {
			m.items = append(m.items, p)
		}
	}
	labels := make([]string, 0, len(m.items))
	for _, p := range m.items {
		labels = append(labels, p.Name)
	}
	m.list.Refresh(labels)
}

// removeLocal drops a deleted provider without waiting for a reload.
func (m *ProvidersModel) removeLocal(id int) {
	kept := make([]api.Provider, 0, len(m.allItems))
	for _, p := range m.allItems {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.allItems = kept
	m.applyFilter()
}

func (m ProvidersModel) find(id int) (api.Provider, bool) {
	for _, p := range m.allItems {
		if p.ID == id {
			return p, true
		}
	}
	return api.Provider{}, false
}

func (m ProvidersModel) selected() (api.Provider, bool) {
	idx := m.list.Selected()
	if idx < 0 || idx >= len(m.items) {
		return api.Provider{}, false
	}
	return m.items[idx], true
}

// refreshDetail republishes the open provider after a reload.
func (m *ProvidersModel) refreshDetail() {
	if m.detailID == 0 {
		return
	}
	p, ok := m.find(m.detailID)
	if !ok {
		if m.view == providersViewDetail || m.view == providersViewService {
			m.closeService()
			m.detailID = 0
			m.view = providersViewList
		}
		return
	}
	m.providerSlot.Set(p)
	m.serviceList.Refresh(serviceLabels(p))
}

// --- List ---

func (m ProvidersModel) handleListKeys(msg tea.KeyMsg) (ProvidersModel, tea.Cmd) {
	switch {
	case isDown(msg):
		m.list.Down()
	case isUp(msg):
		m.list.Up()
	case isEnter(msg):
		if p, ok := m.selected(); ok {
			m.openDetail(p)
		}
	case isKey(msg, "f", "/"):
		m.filtering = true
	case isKey(msg, "n"):
		return m.openProviderForm(draft.ModeCreate, api.Provider{})
	case isKey(msg, "e"):
		if p, ok := m.selected(); ok {
			return m.openProviderForm(draft.ModeEdit, p)
		}
	case isKey(msg, "d"):
		if p, ok := m.selected(); ok {
			m.detailID = p.ID
			m.confirmDelete = true
		}
	case isKey(msg, "r"):
		if m.client != nil {
			m.loading = true
			return m, m.loadProviders
		}
	}
	return m, nil
}

func (m ProvidersModel) handleFilterKeys(msg tea.KeyMsg) (ProvidersModel, tea.Cmd) {
	switch {
	case isEnter(msg):
		m.filtering = false
	case isBack(msg):
		m.filtering = false
		m.filter = ""
		m.applyFilter()
	case isBackspace(msg):
		m.filter = trimLastRune(m.filter)
		m.applyFilter()
	default:
		if text, ok := typedText(msg); ok {
			m.filter += text
			m.applyFilter()
		}
	}
	return m, nil
}

func (m ProvidersModel) renderList() string {
	if m.loading && len(m.allItems) == 0 {
		return components.CenterLine("Loading providers...", m.width)
	}
	countLine := fmt.Sprintf("%d of %d providers", len(m.items), len(m.allItems))
	if f := strings.TrimSpace(m.filter); f != "" {
		countLine += " · filter: " + f
	}
	if len(m.items) == 0 {
		return components.TitledBox("Providers", MutedStyle.Render(countLine)+"\n\n"+MutedStyle.Render("No providers found."), m.width)
	}

	cols := []components.TableColumn{
		{Header: "#", Width: 4, Align: lipgloss.Right},
		{Header: "Name", Width: 20},
		{Header: "NIT", Width: 12},
		{Header: "Email", Width: 18},
		{Header: "Svc", Width: 3, Align: lipgloss.Right},
	}
	visible := m.list.Visible()
	rows := make([][]string, 0, len(visible))
	active := -1
	for i := range visible {
		abs := m.list.RelToAbs(i)
		p := m.items[abs]
		if m.list.IsSelected(abs) {
			active = i
		}
		rows = append(rows, []string{strconv.Itoa(p.ID), p.Name, p.NIT, p.Email, strconv.Itoa(len(p.Services))})
	}
	grid := components.TableGridWithActiveRow(cols, rows, components.BoxContentWidth(m.width), active)
	return components.TitledBox("Providers", MutedStyle.Render(countLine)+"\n\n"+grid, m.width)
}

// --- Detail ---

func (m *ProvidersModel) openDetail(p api.Provider) {
	m.detailID = p.ID
	m.providerSlot.Set(p)
	m.serviceList.SetItems(serviceLabels(p))
	m.view = providersViewDetail
}

func serviceLabels(p api.Provider) []string {
	labels := make([]string, 0, len(p.Services))
	for _, s := range p.Services {
		labels = append(labels, s.Name)
	}
	return labels
}

func (m ProvidersModel) handleDetailKeys(msg tea.KeyMsg) (ProvidersModel, tea.Cmd) {
	p, ok := m.find(m.detailID)
	if !ok {
		m.view = providersViewList
		return m, nil
	}
	switch {
	case isBack(msg):
		m.view = providersViewList
		m.detailID = 0
		m.providerSlot.Clear()
	case isDown(msg):
		m.serviceList.Down()
	case isUp(msg):
		m.serviceList.Up()
	case isEnter(msg):
		if idx := m.serviceList.Selected(); idx >= 0 && idx < len(p.Services) {
			return m.openService(p, idx)
		}
	case isKey(msg, "e"):
		return m.openProviderForm(draft.ModeEdit, p)
	case isKey(msg, "d"):
		m.confirmDelete = true
	}
	return m, nil
}

func (m ProvidersModel) renderDetail() string {
	p, ok := m.find(m.detailID)
	if !ok {
		return m.renderList()
	}
	sections := []string{components.Table("Provider", []components.TableRow{
		{Label: "ID", Value: strconv.Itoa(p.ID)},
		{Label: "Name", Value: p.Name},
		{Label: "NIT", Value: p.NIT},
		{Label: "Email", Value: p.Email},
	}, m.width)}

	if len(p.CustomFields) > 0 {
		rows := make([]components.TableRow, 0, len(p.CustomFields))
		for _, f := range p.CustomFields {
			rows = append(rows, components.TableRow{Label: f.FieldName, Value: f.FieldValue})
		}
		sections = append(sections, components.Table("Custom Fields", rows, m.width))
	}

	if len(p.Services) == 0 {
		sections = append(sections, components.TitledBox("Services", MutedStyle.Render("No services."), m.width))
	} else {
		cols := []components.TableColumn{
			{Header: "Service", Width: 20},
			{Header: "Rate", Width: 14, Align: lipgloss.Right},
			{Header: "Countries", Width: 20},
		}
		rows := make([][]string, 0, len(p.Services))
		for _, s := range p.Services {
			rows = append(rows, []string{s.Name, api.FormatUSD(s.ValuePerHourUSD), countryCodes(s.Countries)})
		}
		grid := components.TableGridWithActiveRow(cols, rows, components.BoxContentWidth(m.width), m.serviceList.Selected())
		sections = append(sections, components.TitledBox("Services", grid, m.width))
	}
	return strings.Join(sections, "\n\n")
}

func countryCodes(countries []api.Country) string {
	codes := make([]string, 0, len(countries))
	for _, c := range countries {
		codes = append(codes, c.Key())
	}
	return strings.Join(codes, " ")
}

// --- Delete ---

func (m ProvidersModel) handleDeleteConfirmKeys(msg tea.KeyMsg) (ProvidersModel, tea.Cmd) {
	switch {
	case isKey(msg, "y"):
		m.deleting = true
		id := m.detailID
		client := m.client
		return m, func() tea.Msg {
			resp, err := client.DeleteProvider(context.Background(), id)
			if err != nil {
				return errMsg{fmt.Errorf("delete provider: %w", err)}
			}
			return providerDeletedMsg{id: id, message: resp.Message}
		}
	case isKey(msg, "n"), isBack(msg):
		m.confirmDelete = false
		if m.view == providersViewList {
			m.detailID = 0
		}
	}
	return m, nil
}

func (m ProvidersModel) renderDeleteConfirm() string {
	p, _ := m.find(m.detailID)
	summary := []components.TableRow{
		{Label: "Name", Value: p.Name},
		{Label: "NIT", Value: p.NIT},
		{Label: "Services", Value: strconv.Itoa(len(p.Services))},
	}
	body := components.ConfirmPreviewDialog("Delete Provider", summary, nil, m.width)
	if m.deleting {
		body += "\n\n" + components.CenterLine(MutedStyle.Render("Deleting..."), m.width)
	}
	return body
}

// --- Editing surfaces ---

func (m ProvidersModel) openProviderForm(mode draft.Mode, snapshot api.Provider) (ProvidersModel, tea.Cmd) {
	m.formReturn = m.view
	m.form = NewProviderForm(m.client, mode, snapshot, m.logger)
	m.form.width = m.width
	m.view = providersViewForm
	if m.form.session.State() == draft.StatePending {
		return m, m.loadDirectory
	}
	return m, nil
}

func (m ProvidersModel) handleDirectory(msg directoryLoadedMsg) (ProvidersModel, tea.Cmd) {
	switch m.view {
	case providersViewForm:
		m.form.useDirectory(msg.listing)
	case providersViewServiceForm:
		m.serviceForm.useDirectory(msg.listing)
	default:
		return m, nil
	}
	if msg.listing.Source == directory.SourceFallback {
		return m, toastCmd("warning", "Country directory unavailable, using the built-in list")
	}
	return m, nil
}

// afterForm returns to the list once the provider session has closed.
func (m ProvidersModel) afterForm(cmd tea.Cmd) (ProvidersModel, tea.Cmd) {
	if !m.form.closed {
		return m, cmd
	}
	m.view = m.formReturn
	if m.view == providersViewDetail {
		if _, ok := m.find(m.detailID); !ok {
			m.view = providersViewList
		}
	}
	outcome := m.form.session.Outcome()
	if !outcome.Saved {
		return m, cmd
	}
	m.loading = true
	text := "Provider saved"
	if m.form.message != "" {
		text = m.form.message
	}
	return m, tea.Batch(cmd, m.loadProviders, toastCmd("success", text))
}

func (m ProvidersModel) hasUnsaved() bool {
	switch m.view {
	case providersViewForm:
		return m.form.session.Dirty()
	case providersViewServiceForm:
		return m.serviceForm.session.Dirty()
	}
	return false
}

// capturingInput is true while keystrokes are text.
func (m ProvidersModel) capturingInput() bool {
	return m.filtering || m.view == providersViewForm || m.view == providersViewServiceForm
}

func (m ProvidersModel) hints() []string {
	if m.confirmDelete {
		return []string{
			components.Hint("y", "Delete"),
			components.Hint("n", "Cancel"),
		}
	}
	switch m.view {
	case providersViewForm:
		return m.form.hints()
	case providersViewServiceForm:
		return m.serviceForm.hints()
	case providersViewDetail:
		return []string{
			components.Hint("↑/↓", "Services"),
			components.Hint("enter", "Open"),
			components.Hint("e", "Edit"),
			components.Hint("d", "Delete"),
			components.Hint("esc", "Back"),
		}
	case providersViewService:
		if m.confirmService {
			return []string{
				components.Hint("y", "Delete"),
				components.Hint("n", "Cancel"),
			}
		}
		return []string{
			components.Hint("e", "Edit"),
			components.Hint("d", "Delete"),
			components.Hint("esc", "Back"),
		}
	}
	if m.filtering {
		return []string{
			components.Hint("enter", "Apply"),
			components.Hint("esc", "Clear"),
		}
	}
	return []string{
		components.Hint("↑/↓", "Scroll"),
		components.Hint("enter", "Details"),
		components.Hint("n", "New"),
		components.Hint("e", "Edit"),
		components.Hint("d", "Delete"),
		components.Hint("f", "Filter"),
		components.Hint("r", "Reload"),
	}
}

func trimLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
