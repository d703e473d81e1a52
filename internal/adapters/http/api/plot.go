package api

import (
	"net/http"
	"strconv"

	"github.com/okian/eegscreen/internal/domain/signal"
)

// PlotHandler renders waveforms without classifying them.
type PlotHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewPlotHandler creates a new plot handler.
func NewPlotHandler(deps Dependencies, maxBodyBytes int64) *PlotHandler {
	return &PlotHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandlePlot handles POST /api/v1/plot requests and answers with a PNG.
func (h *PlotHandler) HandlePlot(w http.ResponseWriter, r *http.Request) {
	const op = "api.plot"
	req, err := decodeScreenRequest(w, r, op, h.maxBodyBytes)
	if err != nil {
		writeFailure(w, err)
		return
	}

	values := req.Values
	if req.Samples != "" {
		values, err = signal.Parse(req.Samples)
		if err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	img, err := h.deps.PlotValues(values)
	if err != nil {
		writeFailure(w, NewKind(op, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}
