package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tekus/provider-console/internal/api"
	"github.com/tekus/provider-console/internal/directory"
)

// --- Fake backend ---

type fakeBackend struct {
	mu sync.Mutex

	providers     []api.Provider
	countries     []api.Country
	nextID        int
	created       []api.Provider
	updated       []api.Provider
	deleted       []int
	syncs         int
	failCountries bool
}

func newFakeBackend(t *testing.T) (*fakeBackend, *api.Client) {
	t.Helper()
	fb := &fakeBackend{
		nextID: 100,
		countries: []api.Country{
			{ID: 1, ISOCode: "CO", Name: "Colombia"},
			{ID: 2, ISOCode: "US", Name: "Estados Unidos"},
			{ID: 3, ISOCode: "MX", Name: "México"},
		},
		providers: []api.Provider{
			{
				ID: 1, NIT: "900123456", Name: "Acme", Email: "ops@acme.co",
				CustomFields: []api.CustomField{{ID: 7, FieldName: "tier", FieldValue: "gold"}},
				Services: []api.Service{{
					ID: 3, Name: "Support", ValuePerHourUSD: "25",
					Countries: []api.Country{{ID: 1, ISOCode: "CO", Name: "Colombia"}},
				}},
			},
			{
				ID: 2, NIT: "800555111", Name: "Globex", Email: "hello@globex.io",
				Services: []api.Service{{
					ID: 4, Name: "Hosting", ValuePerHourUSD: "40",
					Countries: []api.Country{{ID: 2, ISOCode: "US", Name: "Estados Unidos"}},
				}},
			},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(srv.Close)
	return fb, api.NewClient(srv.URL)
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/Providers/GetCompleteProviders":
		_ = json.NewEncoder(w).Encode(fb.providers)
	case r.Method == http.MethodPost && r.URL.Path == "/Providers/CreateProvider":
		var p api.Provider
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fb.created = append(fb.created, p)
		fb.nextID++
		p.ID = fb.nextID
		fb.providers = append(fb.providers, p)
		fb.ack(w, "Proveedor creado exitosamente")
	case r.Method == http.MethodPut && r.URL.Path == "/Providers/UpdateProvider":
		var p api.Provider
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fb.updated = append(fb.updated, p)
		for i := range fb.providers {
			if fb.providers[i].ID == p.ID {
				fb.providers[i] = p
			}
		}
		fb.ack(w, "Proveedor actualizado exitosamente")
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/Providers/DeleteProvider/"):
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/Providers/DeleteProvider/"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fb.deleted = append(fb.deleted, id)
		kept := fb.providers[:0:0]
		for _, p := range fb.providers {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		fb.providers = kept
		fb.ack(w, "Proveedor eliminado exitosamente")
	case r.Method == http.MethodGet && r.URL.Path == "/Countries/GetCountries":
		if fb.failCountries {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(fb.countries)
	case r.Method == http.MethodPost && r.URL.Path == "/Countries/SyncCountriesList":
		fb.syncs++
		fb.ack(w, "Países sincronizados exitosamente")
	case r.Method == http.MethodGet && r.URL.Path == "/health":
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (fb *fakeBackend) ack(w http.ResponseWriter, message string) {
	_ = json.NewEncoder(w).Encode(api.MessageResponse{Message: message})
}

func (fb *fakeBackend) snapshot() (created, updated []api.Provider, deleted []int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]api.Provider(nil), fb.created...),
		append([]api.Provider(nil), fb.updated...),
		append([]int(nil), fb.deleted...)
}

// --- Command runner ---

// runner executes commands the way the bubbletea loop does: each in its own
// goroutine, with results fed back through one queue. Blocking commands stay
// pending across settle calls.
type runner struct {
	msgs chan tea.Msg
}

func newRunner() *runner {
	return &runner{msgs: make(chan tea.Msg, 64)}
}

func (r *runner) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		if msg := cmd(); msg != nil {
			r.msgs <- msg
		}
	}()
}

type updater[M any] interface {
	Update(tea.Msg) (M, tea.Cmd)
}

// settle runs cmd and feeds every resulting message back into m until the
// queue stays idle.
func settle[M updater[M]](r *runner, m M, cmd tea.Cmd) M {
	r.run(cmd)
	for {
		select {
		case msg := <-r.msgs:
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, c := range batch {
					r.run(c)
				}
				continue
			}
			var next tea.Cmd
			m, next = m.Update(msg)
			r.run(next)
		case <-time.After(300 * time.Millisecond):
			return m
		}
	}
}

// press sends one key and settles whatever it starts.
func press[M updater[M]](r *runner, m M, k tea.KeyMsg) M {
	m, cmd := m.Update(k)
	return settle(r, m, cmd)
}

func typeText[M updater[M]](r *runner, m M, text string) M {
	return press(r, m, runes(text))
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func newLoadedProviders(t *testing.T, r *runner, client *api.Client) ProvidersModel {
	t.Helper()
	loader := directory.NewLoader(client, zerolog.Nop())
	m := NewProvidersModel(client, loader, zerolog.Nop())
	m.width = 100
	m.height = 40
	m = settle(r, m, m.Init())
	require.Len(t, m.allItems, 2)
	return m
}
