package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tekus/provider-console/internal/api"
	"github.com/tekus/provider-console/internal/directory"
	"github.com/tekus/provider-console/internal/draft"
)

// Acknowledgement messages; each carries the success marker.
const (
	MsgProviderCreated  = "Proveedor creado exitosamente"
	MsgProviderUpdated  = "Proveedor actualizado exitosamente"
	MsgProviderDeleted  = "Proveedor eliminado exitosamente"
	MsgCountriesSynced  = "Países sincronizados exitosamente"
	healthStatusHealthy = "ok"
)

// Server exposes a Store over the backend's HTTP routes.
type Server struct {
	store    *Store
	logger   zerolog.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	// SyncSource provides the entries written by the country sync.
	SyncSource func() []api.Country
}

// NewServer wires store to a fresh metrics registry.
func NewServer(store *Store, logger zerolog.Logger) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		store:    store,
		logger:   logger,
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tekus_backend_requests_total",
			Help: "Requests handled by route and status code.",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tekus_backend_request_duration_seconds",
			Help:    "Request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		SyncSource: syncFromFallback,
	}
	reg.MustRegister(s.requests, s.latency)
	return s
}

func syncFromFallback() []api.Country {
	entries := directory.Fallback()
	for i := range entries {
		entries[i].FlagImage = directory.FlagURL(entries[i].ISOCode)
	}
	return entries
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "GET /Providers/GetCompleteProviders", s.listProviders)
	s.route(mux, "POST /Providers/CreateProvider", s.createProvider)
	s.route(mux, "PUT /Providers/UpdateProvider", s.updateProvider)
	s.route(mux, "DELETE /Providers/DeleteProvider/{id}", s.deleteProvider)
	s.route(mux, "GET /Countries/GetCountries", s.listCountries)
	s.route(mux, "POST /Countries/SyncCountriesList", s.syncCountries)
	s.route(mux, "GET /health", s.health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Registry exposes the metrics registry.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// route registers h under pattern with request id, logging and metrics.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := strings.TrimSpace(r.Header.Get(api.RequestIDHeader))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(api.RequestIDHeader, reqID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		h(rec, r)

		elapsed := time.Since(start)
		s.requests.WithLabelValues(pattern, strconv.Itoa(rec.status)).Inc()
		s.latency.WithLabelValues(pattern).Observe(elapsed.Seconds())
		ev := s.logger.Info()
		if rec.status >= http.StatusInternalServerError {
			ev = s.logger.Error()
		} else if rec.status >= http.StatusBadRequest {
			ev = s.logger.Warn()
		}
		ev.Str("request_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", elapsed).
			Msg("request")
	})
}

func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := s.store.ListProviders(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, providers)
}

func (s *Server) createProvider(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProvider(w, r)
	if !ok {
		return
	}
	p.ID = 0
	if _, err := s.store.CreateProvider(r.Context(), p); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: MsgProviderCreated})
}

func (s *Server) updateProvider(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProvider(w, r)
	if !ok {
		return
	}
	if p.ID <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id is required")
		return
	}
	if _, err := s.store.UpdateProvider(r.Context(), p); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: MsgProviderUpdated})
}

func (s *Server) deleteProvider(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid provider id")
		return
	}
	if err := s.store.DeleteProvider(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: MsgProviderDeleted})
}

func (s *Server) listCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.store.ListCountries(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countries)
}

func (s *Server) syncCountries(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.UpsertCountries(r.Context(), s.SyncSource())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.logger.Info().Int("countries", n).Msg("country directory synced")
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: MsgCountriesSynced})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": healthStatusHealthy})
}

func (s *Server) decodeProvider(w http.ResponseWriter, r *http.Request) (api.Provider, bool) {
	var p api.Provider
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return p, false
	}
	if msg := validateProvider(p); msg != "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", msg)
		return p, false
	}
	return p, true
}

type fieldValue struct {
	field draft.FieldID
	value string
}

// validateProvider applies the console's field rules to an incoming payload
// and returns the first failure message.
func validateProvider(p api.Provider) string {
	checks := []fieldValue{
		{draft.FieldProviderName, p.Name},
		{draft.FieldProviderNIT, p.NIT},
		{draft.FieldProviderEmail, p.Email},
	}
	for _, f := range p.CustomFields {
		checks = append(checks,
			fieldValue{draft.FieldCustomFieldName, f.FieldName},
			fieldValue{draft.FieldCustomFieldValue, f.FieldValue})
	}
	for _, svc := range p.Services {
		checks = append(checks,
			fieldValue{draft.FieldServiceName, svc.Name},
			fieldValue{draft.FieldServiceValuePerHour, svc.ValuePerHourUSD})
	}
	for _, c := range checks {
		if res := draft.Check(c.field, c.value); !res.OK {
			return draft.Message(c.field, res)
		}
	}
	for _, svc := range p.Services {
		if len(svc.Countries) == 0 {
			return "every service needs at least one country"
		}
	}
	return ""
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrDuplicateNIT):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())
	default:
		s.logger.Error().Err(err).Msg("store failure")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
