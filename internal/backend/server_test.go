package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tekus/provider-console/internal/api"
)

func newTestBackend(t *testing.T) (*httptest.Server, *api.Client) {
	t.Helper()
	srv := httptest.NewServer(NewServer(newTestStore(t), zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)
	return srv, api.NewClient(srv.URL)
}

func TestServerProviderLifecycle(t *testing.T) {
	_, client := newTestBackend(t)
	ctx := context.Background()

	resp, err := client.CreateProvider(ctx, sampleProvider())
	require.NoError(t, err)
	assert.Equal(t, MsgProviderCreated, resp.Message)

	providers, err := client.ListProviders(ctx)
	require.NoError(t, err)
	require.Len(t, providers, 1)
	p := providers[0]
	assert.NotZero(t, p.Services[0].ID)

	p.Services[0].ValuePerHourUSD = "30"
	_, err = client.UpdateProvider(ctx, p)
	require.NoError(t, err)

	providers, err = client.ListProviders(ctx)
	require.NoError(t, err)
	assert.Equal(t, "30", providers[0].Services[0].ValuePerHourUSD)

	resp, err = client.DeleteProvider(ctx, p.ID)
	require.NoError(t, err)
	assert.Contains(t, resp.Message, api.DefaultSuccessMarker)

	providers, err = client.ListProviders(ctx)
	require.NoError(t, err)
	assert.Empty(t, providers)
}

func TestServerRejectsInvalidPayload(t *testing.T) {
	_, client := newTestBackend(t)

	p := sampleProvider()
	p.Email = "not-an-email"
	_, err := client.CreateProvider(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION: Enter a valid email", err.Error())

	p = sampleProvider()
	p.Services[0].Countries = nil
	_, err = client.CreateProvider(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one country")
}

func TestServerDuplicateNITConflict(t *testing.T) {
	_, client := newTestBackend(t)
	ctx := context.Background()

	_, err := client.CreateProvider(ctx, sampleProvider())
	require.NoError(t, err)
	_, err = client.CreateProvider(ctx, sampleProvider())
	require.Error(t, err)
	assert.Equal(t, "CONFLICT: nit already registered", err.Error())
}

func TestServerUpdateAndDeleteMissing(t *testing.T) {
	_, client := newTestBackend(t)
	ctx := context.Background()

	p := sampleProvider()
	p.ID = 42
	_, err := client.UpdateProvider(ctx, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")

	_, err = client.DeleteProvider(ctx, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestServerSyncCountries(t *testing.T) {
	_, client := newTestBackend(t)
	ctx := context.Background()

	countries, err := client.ListCountries(ctx)
	require.NoError(t, err)
	assert.Empty(t, countries)

	resp, err := client.SyncCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, MsgCountriesSynced, resp.Message)

	countries, err = client.ListCountries(ctx)
	require.NoError(t, err)
	require.Len(t, countries, 15)
	assert.Equal(t, "CO", countries[0].Key())
	assert.Equal(t, "https://flagcdn.com/16x12/co.png", countries[0].FlagImage)
}

func TestServerHealthAndRequestID(t *testing.T) {
	srv, client := newTestBackend(t)

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(api.RequestIDHeader, "req-123")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "req-123", res.Header.Get(api.RequestIDHeader))
}

func TestServerBadDeleteID(t *testing.T) {
	srv, _ := newTestBackend(t)
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/Providers/DeleteProvider/abc", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestServerMetrics(t *testing.T) {
	srv, client := newTestBackend(t)
	_, err := client.ListProviders(context.Background())
	require.NoError(t, err)

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `tekus_backend_requests_total{code="200",route="GET /Providers/GetCompleteProviders"} 1`))
}
