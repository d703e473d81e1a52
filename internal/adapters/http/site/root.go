// Package site serves the screening page: a form for raw EEG samples and the
// verdict, gauge, waveform and feature tables for the last submission.
package site

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/okian/eegscreen/internal/adapters/render"
	service "github.com/okian/eegscreen/internal/app"
	"github.com/okian/eegscreen/internal/domain/signal"
	"github.com/okian/eegscreen/internal/domain/types"
	"github.com/okian/eegscreen/pkg/logger"
)

// DefaultSamples pre-fills the form.
const DefaultSamples = "-1.4408 1.2876 -1.0992 -0.4306 \n 1.4696 0.1682 1.228 -0.1394"

const (
	clockLayout         = "03:04 PM"
	defaultMaxFormBytes = 1 << 20
)

// Error constants
var (
	ErrRender = errors.New("site render failed")
)

// Screener is what the page needs from the screening service.
type Screener interface {
	Screen(ctx context.Context, raw string) (types.Screening, error)
	Plot(s types.Screening) ([]byte, error)
	Counters() types.Counters
}

// Middleware wraps a handler with instrumentation for endpoint.
type Middleware func(next http.HandlerFunc, endpoint string) http.HandlerFunc

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithMiddleware wraps the page routes, e.g. with request metrics.
func WithMiddleware(m Middleware) Option {
	return func(h *Handler) {
		if m != nil {
			h.middleware = m
		}
	}
}

// WithClock replaces time.Now for the header clock.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithMaxFormBytes caps the submitted form size.
func WithMaxFormBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxFormBytes = n
		}
	}
}

// Handler renders the screening page.
type Handler struct {
	screener     Screener
	tmpl         *template.Template
	now          func() time.Time
	maxFormBytes int64
	middleware   Middleware
	logger       logger.Logger
}

// NewHandler creates a page handler backed by screener.
func NewHandler(screener Screener, opts ...Option) *Handler {
	h := &Handler{
		screener:     screener,
		tmpl:         pageTemplate,
		now:          time.Now,
		maxFormBytes: defaultMaxFormBytes,
		middleware:   func(next http.HandlerFunc, _ string) http.HandlerFunc { return next },
		logger:       logger.Get().Named("site"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches the page routes to mux.
func Register(_ context.Context, mux *http.ServeMux, screener Screener, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	h := NewHandler(screener, opts...)
	mux.HandleFunc("/", h.middleware(h.HandleRoot, "root"))
	mux.HandleFunc("/predict", h.middleware(h.HandlePredict, "predict"))
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

type pageData struct {
	Clock    string
	Counters types.Counters
	Input    string
	Error    string
	Result   *resultView
}

type resultView struct {
	types.Screening
	Message string
	Gauge   render.Gauge
	PlotURI template.URL
}

// HandleRoot handles GET / with an empty form.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.render(w, r, http.StatusOK, h.page(DefaultSamples))
}

// HandlePredict handles POST /predict from the form.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFormBytes)
	if err := r.ParseForm(); err != nil {
		data := h.page("")
		data.Error = "Input too large or malformed. Please submit fewer samples."
		h.render(w, r, http.StatusRequestEntityTooLarge, data)
		return
	}
	raw := r.PostFormValue("samples")

	res, err := h.screener.Screen(r.Context(), raw)
	data := h.page(raw)
	if err != nil {
		status, msg := describe(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error(r.Context(), "screening failed", logger.Error(err))
		}
		data.Error = msg
		h.render(w, r, status, data)
		return
	}

	img, err := h.screener.Plot(res)
	if err != nil {
		h.logger.Warn(r.Context(), "plot failed; showing blank fallback", logger.Error(err))
		img = render.Blank(render.DefaultWidth, render.DefaultHeight)
	}
	data.Result = &resultView{
		Screening: res,
		Message:   res.Message(),
		Gauge:     render.NewGauge(res.Probability),
		// #nosec G203 -- the URI is built from our own PNG bytes.
		PlotURI: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(img)),
	}
	h.render(w, r, http.StatusOK, data)
}

// describe turns a screening error into a status and a user-facing message.
func describe(err error) (int, string) {
	switch {
	case errors.Is(err, signal.ErrInvalidSample), errors.Is(err, signal.ErrNoSamples):
		return http.StatusBadRequest, "Invalid input: " + err.Error() + ". Please enter numeric values only."
	case errors.Is(err, service.ErrTooManySamples):
		return http.StatusRequestEntityTooLarge, "Input too large: " + err.Error() + "."
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "The screening queue is full. Please try again in a moment."
	default:
		return http.StatusServiceUnavailable, "Screening failed. Please try again."
	}
}

func (h *Handler) page(input string) pageData {
	return pageData{
		Clock:    h.now().Format(clockLayout),
		Counters: h.screener.Counters(),
		Input:    input,
	}
}

// render executes into a buffer first so a template failure never sends a
// half-written page.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) { //nolint:gocritic // hugeParam: executed once per request
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.logger.Error(r.Context(), "template failed", logger.Error(errors.Join(ErrRender, err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
