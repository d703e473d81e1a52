// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/eegscreen/internal/domain/types"
	"github.com/okian/eegscreen/pkg/metrics"
)

const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Screen parses raw sample text and classifies it.
	Screen(ctx context.Context, raw string) (types.Screening, error)
	// ScreenValues classifies already-decoded samples.
	ScreenValues(ctx context.Context, values []float64) (types.Screening, error)

	// Plot renders a screening's waveform; PlotValues renders bare samples.
	Plot(s types.Screening) ([]byte, error)
	PlotValues(values []float64) ([]byte, error)
}

// Server wires HTTP routes for the screening API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	screenHandler    *ScreenHandler
	plotHandler      *PlotHandler
	dashboardHandler *dashboardHandler
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxBodyBytes int64
}

// WithMaxBodyBytes caps request bodies on the JSON endpoints.
func WithMaxBodyBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		screenHandler:    NewScreenHandler(deps, cfg.maxBodyBytes),
		plotHandler:      NewPlotHandler(deps, cfg.maxBodyBytes),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/screen", MetricsMiddleware(s.screenHandler.HandleScreen, "screen"))
	mux.HandleFunc("/api/v1/plot", MetricsMiddleware(s.plotHandler.HandlePlot, "plot"))
}

// screenRequest mirrors the OpenAPI schema for POST /api/v1/screen.
// Exactly one of Samples or Values carries the recording.
type screenRequest struct {
	Samples     string    `json:"samples"`
	Values      []float64 `json:"values"`
	IncludePlot bool      `json:"include_plot"`
}

func decodeScreenRequest(w http.ResponseWriter, r *http.Request, op string, limit int64) (screenRequest, error) {
	var req screenRequest
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		return req, NewKind(op, ErrMethodNotAllowed)
	}
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, WrapKind(op, ErrBadRequest, err)
	}
	switch {
	case req.Samples != "" && len(req.Values) > 0:
		return req, WrapKind(op, ErrBadRequest, fmt.Errorf("send either samples or values, not both"))
	case req.Samples == "" && len(req.Values) == 0:
		return req, WrapKind(op, ErrBadRequest, fmt.Errorf("missing samples or values"))
	}
	return req, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before touching the response so an unencodable value
// becomes a 500 rather than an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "internal", Message: "failed to encode response: " + err.Error()})
		metrics.RecordErrorByType("encode", "error")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure picks the status for err and writes it.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
