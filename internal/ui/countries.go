package ui

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tekus/provider-console/internal/api"
	"github.com/tekus/provider-console/internal/directory"
	"github.com/tekus/provider-console/internal/ui/components"
)

// --- Messages ---

type countriesLoadedMsg struct{ listing directory.Listing }
type countriesSyncedMsg struct{ message string }

// --- Countries Model ---

// CountriesModel browses the country directory the editing surfaces pick
// from.
type CountriesModel struct {
	client  *api.Client
	loader  *directory.Loader
	items   []api.Country
	source  directory.Source
	list    *components.List
	loading bool
	syncing bool
	width   int
	height  int
}

func NewCountriesModel(client *api.Client, loader *directory.Loader) CountriesModel {
	return CountriesModel{
		client: client,
		loader: loader,
		list:   components.NewList(15),
	}
}

func (m CountriesModel) Init() tea.Cmd {
	return m.load
}

func (m CountriesModel) Update(msg tea.Msg) (CountriesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case countriesLoadedMsg:
		m.loading = false
		m.items = msg.listing.Entries
		m.source = msg.listing.Source
		labels := make([]string, 0, len(m.items))
		for _, c := range m.items {
			labels = append(labels, c.Name)
		}
		m.list.Refresh(labels)
		return m, nil
	case countriesSyncedMsg:
		m.syncing = false
		m.loading = true
		return m, tea.Batch(m.load, toastCmd("success", msg.message))
	case errMsg:
		m.loading = false
		m.syncing = false
		return m, nil

	case tea.KeyMsg:
		if m.syncing {
			return m, nil
		}
		switch {
		case isDown(msg):
			m.list.Down()
		case isUp(msg):
			m.list.Up()
		case isKey(msg, "r"):
			m.loading = true
			return m, m.load
		case isKey(msg, "s"):
			if m.client == nil {
				return m, nil
			}
			m.syncing = true
			return m, m.sync
		}
	}
	return m, nil
}

func (m CountriesModel) load() tea.Msg {
	return countriesLoadedMsg{listing: m.loader.Countries(context.Background())}
}

func (m CountriesModel) sync() tea.Msg {
	resp, err := m.client.SyncCountries(context.Background())
	if err != nil {
		return errMsg{fmt.Errorf("sync countries: %w", err)}
	}
	return countriesSyncedMsg{message: resp.Message}
}

func (m CountriesModel) View() string {
	if m.loading && len(m.items) == 0 {
		return components.CenterLine("Loading countries...", m.width)
	}
	status := fmt.Sprintf("%d countries", len(m.items))
	switch m.source {
	case directory.SourceRemote:
		status += " · from backend"
	case directory.SourceFallback:
		status += " · " + WarningStyle.Render("built-in list (backend unavailable)")
	}
	if m.syncing {
		status += " · syncing..."
	}
	if len(m.items) == 0 {
		return components.TitledBox("Countries", MutedStyle.Render(status), m.width)
	}

	cols := []components.TableColumn{
		{Header: "#", Width: 4, Align: lipgloss.Right},
		{Header: "ISO", Width: 4},
		{Header: "Name", Width: 18},
		{Header: "Flag", Width: 30},
	}
	visible := m.list.Visible()
	rows := make([][]string, 0, len(visible))
	active := -1
	for i := range visible {
		abs := m.list.RelToAbs(i)
		c := m.items[abs]
		if m.list.IsSelected(abs) {
			active = i
		}
		rows = append(rows, []string{strconv.Itoa(c.ID), c.Key(), c.Name, directory.Flag(c)})
	}
	grid := components.TableGridWithActiveRow(cols, rows, components.BoxContentWidth(m.width), active)
	return components.TitledBox("Countries", MutedStyle.Render(status)+"\n\n"+grid, m.width)
}

func (m CountriesModel) hints() []string {
	hints := []string{
		components.Hint("↑/↓", "Scroll"),
		components.Hint("r", "Reload"),
	}
	if m.client != nil {
		hints = append(hints, components.Hint("s", "Sync"))
	}
	return hints
}
