package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL)
	return srv, client
}

func messageResponse(msg string) []byte {
	b, _ := json.Marshal(map[string]any{"message": msg})
	return b
}

func TestListProviders(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/Providers/GetCompleteProviders", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":    1,
				"nit":   "900123456",
				"name":  "Acme",
				"email": "ops@acme.co",
				"customFields": []map[string]any{
					{"id": 7, "fieldName": "tier", "fieldValue": "gold"},
				},
				"services": []map[string]any{
					{
						"id":              3,
						"name":            "Support",
						"valuePerHourUsd": "25.5",
						"countries": []map[string]any{
							{"id": 1, "isocode": "CO", "name": "Colombia"},
						},
					},
				},
			},
		})
	})

	providers, err := client.ListProviders(context.Background())
	require.NoError(t, err)
	require.Len(t, providers, 1)
	p := providers[0]
	assert.Equal(t, "Acme", p.Name)
	require.Len(t, p.CustomFields, 1)
	assert.Equal(t, "gold", p.CustomFields[0].FieldValue)
	require.Len(t, p.Services, 1)
	assert.Equal(t, "25.5", p.Services[0].ValuePerHourUSD)
	assert.Equal(t, "CO", p.Services[0].Countries[0].Key())
}

func TestCreateProviderConfirmed(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/Providers/CreateProvider", r.URL.Path)
		var body Provider
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Acme", body.Name)
		w.Write(messageResponse("Proveedor creado exitosamente"))
	})

	resp, err := client.CreateProvider(context.Background(), Provider{Name: "Acme"})
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "exitosamente")
}

func TestUpdateProviderWithoutMarkerIsNotConfirmed(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/Providers/UpdateProvider", r.URL.Path)
		w.Write(messageResponse("No se pudo actualizar"))
	})

	resp, err := client.UpdateProvider(context.Background(), Provider{ID: 1, Name: "Acme"})
	require.Error(t, err)
	var notConfirmed *NotConfirmedError
	require.True(t, errors.As(err, &notConfirmed))
	assert.Equal(t, "No se pudo actualizar", notConfirmed.Message)
	require.NotNil(t, resp)
	assert.Equal(t, "No se pudo actualizar", resp.Message)
}

func TestDeleteProvider(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/Providers/DeleteProvider/42", r.URL.Path)
		w.Write(messageResponse("Proveedor eliminado exitosamente"))
	})

	resp, err := client.DeleteProvider(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Proveedor eliminado exitosamente", resp.Message)
}

func TestCustomSuccessMarker(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(messageResponse("provider saved successfully"))
	})
	client.SetSuccessMarker("successfully")

	_, err := client.UpdateProvider(context.Background(), Provider{ID: 1})
	assert.NoError(t, err)

	// Blank markers are ignored.
	client.SetSuccessMarker("  ")
	_, err = client.UpdateProvider(context.Background(), Provider{ID: 1})
	assert.NoError(t, err)
}

func TestListCountriesAndSync(t *testing.T) {
	var synced atomic.Bool
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/Countries/GetCountries":
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": 1, "isocode": "co", "name": "Colombia"},
				{"id": 2, "isocode": "MX", "name": "Mexico"},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/Countries/SyncCountriesList":
			synced.Store(true)
			w.Write(messageResponse("Paises sincronizados exitosamente"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	countries, err := client.ListCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 2)
	assert.Equal(t, "CO", countries[0].Key())

	_, err = client.SyncCountries(context.Background())
	require.NoError(t, err)
	assert.True(t, synced.Load())
}

func TestErrorEnvelopeIsSurfaced(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		b, _ := json.Marshal(map[string]any{
			"error": map[string]any{
				"code":    "VALIDATION",
				"message": "nit already registered",
			},
		})
		w.Write(b)
	})

	_, err := client.CreateProvider(context.Background(), Provider{Name: "Acme"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION: nit already registered", err.Error())
}

func TestProblemDetailsTitleIsSurfaced(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"title":"One or more errors occurred."}`))
	})

	_, err := client.ListProviders(context.Background())
	require.Error(t, err)
	assert.Equal(t, "One or more errors occurred.", err.Error())
}

func TestPlainErrorBodyFallsBackToStatus(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	_, err := client.ListCountries(context.Background())
	require.Error(t, err)
	assert.Equal(t, "HTTP 502: upstream down", err.Error())
}

func TestMalformedBodyReturnsDecodeError(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	})

	_, err := client.ListProviders(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestCanceledContextAbortsRequest(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Provider{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListProviders(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeoutKeepsMarker(t *testing.T) {
	client := NewClient("http://example.invalid/")
	client.SetSuccessMarker("ok")
	clone := client.WithTimeout(time.Second)
	assert.Equal(t, "http://example.invalid", clone.BaseURL())
	assert.Equal(t, "ok", clone.successMarker)
	assert.Equal(t, time.Second, clone.httpClient.Timeout)
}

func TestRequestIDsAreUnique(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.Header.Get(RequestIDHeader)] = true
		mu.Unlock()
		json.NewEncoder(w).Encode([]Provider{})
	})

	for i := 0; i < 5; i++ {
		_, err := client.ListProviders(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, seen, 5)
}

func TestClientConcurrentUpdates(t *testing.T) {
	var count atomic.Int32
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/Providers/UpdateProvider" {
			var body Provider
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "stress-provider", body.Name)
			count.Add(1)
			w.Write(messageResponse("Proveedor actualizado exitosamente"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	const workers = 50
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.UpdateProvider(context.Background(), Provider{ID: 1, Name: "stress-provider"})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(workers), count.Load())
}

func TestProviderCloneIsDeep(t *testing.T) {
	original := Provider{
		Name:         "Acme",
		CustomFields: []CustomField{{FieldName: "tier", FieldValue: "gold"}},
		Services: []Service{{
			Name:      "Support",
			Countries: []Country{{ISOCode: "CO"}},
		}},
	}
	clone := original.Clone()
	clone.CustomFields[0].FieldValue = "silver"
	clone.Services[0].Countries[0].ISOCode = "MX"
	clone.Services[0].Name = "Other"

	assert.Equal(t, "gold", original.CustomFields[0].FieldValue)
	assert.Equal(t, "CO", original.Services[0].Countries[0].ISOCode)
	assert.Equal(t, "Support", original.Services[0].Name)
	assert.Equal(t, 0, original.ServiceIndex(0))
	assert.Equal(t, -1, original.ServiceIndex(99))
}

func TestNotConfirmedErrorMessage(t *testing.T) {
	assert.Equal(t, "backend did not confirm the operation", (&NotConfirmedError{}).Error())
	assert.Equal(t, "backend did not confirm the operation: nope", (&NotConfirmedError{Message: "nope"}).Error())
}

func TestProviderMatches(t *testing.T) {
	p := Provider{
		Name:     "Acme",
		Email:    "ops@acme.co",
		NIT:      "900123456",
		Services: []Service{{Name: "Cloud Support"}},
	}
	assert.True(t, p.Matches(""))
	assert.True(t, p.Matches("ACME"))
	assert.True(t, p.Matches("ops@"))
	assert.True(t, p.Matches("9001"))
	assert.True(t, p.Matches("cloud"))
	assert.False(t, p.Matches("globex"))
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$25.50 USD", FormatUSD("25.5"))
	assert.Equal(t, "$1200.00 USD", FormatUSD(" 1200 "))
	assert.Equal(t, "$0.00 USD", FormatUSD("n/a"))
	assert.Equal(t, "$0.00 USD", FormatUSD(""))
	assert.Equal(t, "$0.00 USD", FormatUSD("NaN"))
}
