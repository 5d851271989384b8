package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tekus/provider-console/internal/api"
	"github.com/tekus/provider-console/internal/config"
	"github.com/tekus/provider-console/internal/directory"
	"github.com/tekus/provider-console/internal/draft"
	"github.com/tekus/provider-console/internal/ui/components"
)

func newTestApp() App {
	app := NewApp(nil, &config.Config{APIURL: "http://localhost:5080/api"}, zerolog.Nop())
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return model.(App)
}

// withDirtyForm opens an edit form on app with one pending change.
func withDirtyForm(t *testing.T, app App) App {
	t.Helper()
	snapshot := api.Provider{
		ID: 1, NIT: "900123456", Name: "Acme", Email: "ops@acme.co",
		Services: []api.Service{{ID: 3, Name: "Support", ValuePerHourUSD: "25", Countries: []api.Country{{ISOCode: "CO", Name: "Colombia"}}}},
	}
	app.providers.form = NewProviderForm(nil, draft.ModeEdit, snapshot, zerolog.Nop())
	app.providers.view = providersViewForm
	model, _ := app.Update(runes("!"))
	app = model.(App)
	require.True(t, app.providers.form.session.Dirty())
	return app
}

func TestHelpToggle(t *testing.T) {
	app := newTestApp()
	model, _ := app.Update(runes("?"))
	updated := model.(App)
	assert.True(t, updated.helpOpen)
	assert.Contains(t, components.SanitizeText(updated.View()), "backend: http://localhost:5080/api")

	model, _ = updated.Update(tea.KeyMsg{Type: tea.KeyEsc})
	updated = model.(App)
	assert.False(t, updated.helpOpen)
}

func TestQuitWithoutDraftExits(t *testing.T) {
	app := newTestApp()

	model, cmd := app.Update(runes("q"))
	updated := model.(App)

	assert.False(t, updated.quitConfirm)
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestQuitConfirmWhenDraftIsDirty(t *testing.T) {
	app := withDirtyForm(t, newTestApp())

	// q is text while a form owns the keyboard.
	model, cmd := app.Update(runes("q"))
	app = model.(App)
	assert.False(t, app.quitConfirm)
	assert.Nil(t, cmd)
	assert.Equal(t, "Acme!q", app.providers.form.session.Tree().Value(draft.FieldProviderName))

	model, cmd = app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	app = model.(App)
	assert.True(t, app.quitConfirm)
	assert.Nil(t, cmd)
	assert.Contains(t, components.SanitizeText(app.View()), "unsaved changes")

	model, _ = app.Update(runes("n"))
	app = model.(App)
	assert.False(t, app.quitConfirm)
	assert.Equal(t, providersViewForm, app.providers.view)

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	app = model.(App)
	model, cmd = app.Update(runes("y"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.True(t, model.(App).quitConfirm)
}

func TestDigitsSwitchTabsAndLoadCountries(t *testing.T) {
	app := newTestApp()

	model, cmd := app.Update(runes("2"))
	app = model.(App)
	require.Equal(t, tabCountries, app.tab)
	require.NotNil(t, cmd)

	// Without a backend the built-in list is shown.
	model, _ = app.Update(cmd())
	app = model.(App)
	assert.Len(t, app.countries.items, len(directory.Fallback()))
	assert.Equal(t, directory.SourceFallback, app.countries.source)
	assert.Contains(t, components.SanitizeText(app.View()), "built-in list")

	model, _ = app.Update(runes("1"))
	assert.Equal(t, tabProviders, model.(App).tab)
}

func TestArrowsSwitchTabsOnlyAtRoot(t *testing.T) {
	app := newTestApp()

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRight})
	app = model.(App)
	assert.Equal(t, tabCountries, app.tab)

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyLeft})
	app = model.(App)
	assert.Equal(t, tabProviders, app.tab)

	app = withDirtyForm(t, app)
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, tabProviders, model.(App).tab)
}

func TestErrMsgShowsErrorBoxUntilNextKey(t *testing.T) {
	app := newTestApp()

	model, _ := app.Update(errMsg{errors.New("load providers: boom")})
	app = model.(App)
	assert.Equal(t, "load providers: boom", app.err)
	assert.Contains(t, components.SanitizeText(app.View()), "boom")

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, model.(App).err)
}

func TestToastLifecycle(t *testing.T) {
	app := newTestApp()

	model, cmd := app.Update(toastMsg{level: "success", text: "Proveedor creado exitosamente"})
	app = model.(App)
	require.NotNil(t, app.toast)
	require.NotNil(t, cmd)
	assert.Contains(t, components.SanitizeText(app.View()), "Proveedor creado exitosamente")

	model, _ = app.Update(clearToastMsg{})
	assert.Nil(t, model.(App).toast)
}

func TestHealthFailureWarns(t *testing.T) {
	app := newTestApp()

	model, _ := app.Update(healthCheckedMsg{err: errors.New("connection refused")})
	app = model.(App)
	require.NotNil(t, app.toast)
	assert.Equal(t, "warning", app.toast.level)
	assert.Contains(t, app.toast.text, "connection refused")

	model, _ = newTestApp().Update(healthCheckedMsg{status: "ok"})
	assert.Nil(t, model.(App).toast)
}

func TestAppInitChecksHealthAndLoadsProviders(t *testing.T) {
	_, client := newFakeBackend(t)
	app := NewApp(client, &config.Config{}, zerolog.Nop())

	cmd := app.Init()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		model, _ := app.Update(c())
		app = model.(App)
	}
	assert.Len(t, app.providers.allItems, 2)
	assert.Nil(t, app.toast)
}

func TestWindowSizeReachesTabs(t *testing.T) {
	app := newTestApp()
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = model.(App)
	assert.Equal(t, 120, app.providers.width)
	assert.Equal(t, 120, app.countries.width)
}

func TestAppViewRendersBannerTabsAndHints(t *testing.T) {
	app := newTestApp()
	out := components.SanitizeText(app.View())

	assert.Contains(t, out, "Provider Administration")
	assert.Contains(t, out, "1 Providers")
	assert.Contains(t, out, "2 Countries")
	assert.Contains(t, out, "No providers found.")
	assert.Contains(t, out, "Quit")
}

func TestCenterBlockUniformPadsEveryLine(t *testing.T) {
	out := centerBlockUniform("ab\nabcd", 10)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "   ab", lines[0])
	assert.Equal(t, "   abcd", lines[1])

	assert.Equal(t, "0123456789", centerBlockUniform("0123456789", 5))
	assert.Equal(t, "x", centerBlockUniform("x", 0))
}
