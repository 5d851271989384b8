package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tekus/provider-console/internal/api"
	"github.com/tekus/provider-console/internal/config"
	"github.com/tekus/provider-console/internal/directory"
	"github.com/tekus/provider-console/internal/ui/components"
)

// --- Tab Constants ---

const (
	tabProviders = 0
	tabCountries = 1
	tabCount     = 2
)

var tabNames = []string{"Providers", "Countries"}

// --- Messages ---

type errMsg struct{ err error }
type clearToastMsg struct{}
type toastMsg struct {
	level string
	text  string
}
type healthCheckedMsg struct {
	status string
	err    error
}

type appToast struct {
	level string
	text  string
}

func toastCmd(level, text string) tea.Cmd {
	return func() tea.Msg { return toastMsg{level: level, text: text} }
}

// --- App Model ---

// App is the root TUI model that routes between tabs.
type App struct {
	client *api.Client
	config *config.Config
	logger zerolog.Logger

	tab         int
	width       int
	height      int
	err         string
	helpOpen    bool
	quitConfirm bool
	toast       *appToast

	providers ProvidersModel
	countries CountriesModel
}

// NewApp creates the root application model.
func NewApp(client *api.Client, cfg *config.Config, logger zerolog.Logger) App {
	var fetcher directory.Fetcher
	if client != nil {
		fetcher = client
	}
	loader := directory.NewLoader(fetcher, logger)
	return App{
		client:    client,
		config:    cfg,
		logger:    logger,
		tab:       tabProviders,
		providers: NewProvidersModel(client, loader, logger),
		countries: NewCountriesModel(client, loader),
	}
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.providers.Init()}
	if a.client != nil {
		cmds = append(cmds, a.healthCheckCmd())
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.providers.width = msg.Width
		a.providers.height = msg.Height
		a.countries.width = msg.Width
		a.countries.height = msg.Height
		return a, nil

	case clearToastMsg:
		a.toast = nil
		return a, nil
	case toastMsg:
		return a, a.setToast(msg.level, msg.text)
	case healthCheckedMsg:
		if msg.err != nil {
			a.logger.Warn().Err(msg.err).Msg("backend health check failed")
			return a, a.setToast("warning", "Backend unreachable: "+msg.err.Error())
		}
		return a, nil
	case errMsg:
		a.err = msg.err.Error()
		a.logger.Error().Err(msg.err).Msg("ui error")

	case tea.KeyMsg:
		if a.quitConfirm {
			switch {
			case isKey(msg, "y"):
				return a, tea.Quit
			case isKey(msg, "n"), isBack(msg):
				a.quitConfirm = false
			}
			return a, nil
		}
		if a.helpOpen {
			if isBack(msg) || isKey(msg, "?") {
				a.helpOpen = false
			}
			return a, nil
		}
		if a.err != "" {
			a.err = ""
		}
		if isKey(msg, "ctrl+c") {
			return a.requestQuit()
		}
		// Text entry owns every other key.
		if a.capturingInput() {
			return a.delegateKey(msg)
		}
		if isKey(msg, "?") {
			a.helpOpen = true
			return a, nil
		}
		if isQuit(msg) {
			return a.requestQuit()
		}
		if idx, ok := tabIndexForKey(msg.String()); ok {
			return a.switchTab(idx)
		}
		if a.atTabRoot() && isKey(msg, "left", "right") {
			step := 1
			if isKey(msg, "left") {
				step = tabCount - 1
			}
			return a.switchTab((a.tab + step) % tabCount)
		}
		return a.delegateKey(msg)
	}

	// Non-key messages reach every tab; each ignores what it does not own.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.providers, cmd = a.providers.Update(msg)
	cmds = append(cmds, cmd)
	a.countries, cmd = a.countries.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a App) delegateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.tab {
	case tabProviders:
		a.providers, cmd = a.providers.Update(msg)
	case tabCountries:
		a.countries, cmd = a.countries.Update(msg)
	}
	return a, cmd
}

func (a App) requestQuit() (tea.Model, tea.Cmd) {
	if a.hasUnsaved() {
		a.quitConfirm = true
		return a, nil
	}
	return a, tea.Quit
}

func (a App) View() string {
	banner := centerBlockUniform(RenderBanner(), a.width)
	tabs := centerBlockUniform(a.renderTabs(), a.width)

	var content string
	switch {
	case a.quitConfirm:
		content = components.Indent(components.ConfirmDialog("Quit", "You have unsaved changes. Quit anyway?"), 1)
	case a.helpOpen:
		content = a.renderHelp()
	case a.tab == tabCountries:
		content = a.countries.View()
	default:
		content = a.providers.View()
	}
	content = centerBlockUniform(content, a.width)

	hints := components.StatusBar(a.statusHints(), a.width)

	feedback := ""
	if a.err != "" {
		feedback = "\n\n" + centerBlockUniform(components.ErrorBox("Error", a.err, a.width), a.width)
	} else if a.toast != nil {
		feedback = "\n\n" + centerBlockUniform(a.renderToast(), a.width)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n\n%s%s", banner, tabs, content, hints, feedback)
}

func (a App) switchTab(newTab int) (App, tea.Cmd) {
	oldTab := a.tab
	a.tab = newTab
	if oldTab == newTab {
		return a, nil
	}
	switch newTab {
	case tabProviders:
		return a, a.providers.Init()
	case tabCountries:
		return a, a.countries.Init()
	}
	return a, nil
}

func (a App) renderTabs() string {
	segments := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if i == a.tab {
			segments = append(segments, TabActiveStyle.Render(label))
		} else {
			segments = append(segments, TabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, segments...)
}

func (a App) statusHints() []string {
	if a.quitConfirm {
		return []string{
			components.Hint("y", "Confirm"),
			components.Hint("n", "Cancel"),
		}
	}
	if a.helpOpen {
		return []string{components.Hint("esc", "Back")}
	}
	return a.statusHintsForTab()
}

func (a App) statusHintsForTab() []string {
	var hints []string
	if !a.capturingInput() {
		hints = append(hints,
			components.Hint("1-2", "Tabs"),
			components.Hint("?", "Help"),
			components.Hint("q", "Quit"),
		)
	}
	switch a.tab {
	case tabCountries:
		return append(hints, a.countries.hints()...)
	default:
		return append(hints, a.providers.hints()...)
	}
}

func (a App) renderHelp() string {
	lines := []string{MutedStyle.Render("esc to close"), ""}
	for _, hint := range a.statusHintsForTab() {
		lines = append(lines, "  "+hint)
	}
	if a.config != nil {
		lines = append(lines, "", MutedStyle.Render("backend: "+a.config.APIURL))
		if a.config.Email != "" {
			lines = append(lines, MutedStyle.Render("signed in as "+a.config.Email))
		}
	}
	return components.Indent(components.TitledBox("Help", strings.Join(lines, "\n"), a.width), 1)
}

func (a App) healthCheckCmd() tea.Cmd {
	client := a.client.WithTimeout(1500 * time.Millisecond)
	return func() tea.Msg {
		status, err := client.Health(context.Background())
		return healthCheckedMsg{status: status, err: err}
	}
}

func (a *App) setToast(level, text string) tea.Cmd {
	a.toast = &appToast{
		level: level,
		text:  components.SanitizeOneLine(text),
	}
	return tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	title := "Info"
	switch a.toast.level {
	case "success":
		title = "Success"
	case "warning":
		title = "Warning"
	case "error":
		return components.ErrorBox("Error", a.toast.text, a.width)
	}
	return components.TitledBox(title, a.toast.text, a.width)
}

// hasUnsaved reports whether quitting would lose a draft.
func (a App) hasUnsaved() bool {
	return a.providers.hasUnsaved()
}

func (a App) capturingInput() bool {
	return a.tab == tabProviders && a.providers.capturingInput()
}

func (a App) atTabRoot() bool {
	switch a.tab {
	case tabProviders:
		return a.providers.view == providersViewList && !a.providers.confirmDelete
	}
	return true
}

func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	widest := 0
	for _, line := range lines {
		widest = max(widest, lipgloss.Width(line))
	}
	if widest <= 0 || widest >= width {
		return s
	}
	prefix := strings.Repeat(" ", (width-widest)/2)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
