package api

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/okian/eegscreen/internal/adapters/render"
	"github.com/okian/eegscreen/internal/domain/types"
)

// ScreenHandler handles screening requests.
type ScreenHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewScreenHandler creates a new screening handler.
func NewScreenHandler(deps Dependencies, maxBodyBytes int64) *ScreenHandler {
	return &ScreenHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

type screenResponse struct {
	types.Screening
	Message string       `json:"message"`
	Gauge   render.Gauge `json:"gauge"`
}

// HandleScreen handles POST /api/v1/screen requests.
func (h *ScreenHandler) HandleScreen(w http.ResponseWriter, r *http.Request) {
	const op = "api.screen"
	req, err := decodeScreenRequest(w, r, op, h.maxBodyBytes)
	if err != nil {
		writeFailure(w, err)
		return
	}

	res, err := h.screen(r.Context(), req)
	if err != nil {
		writeFailure(w, NewKind(op, err))
		return
	}
	if req.IncludePlot {
		// A failed plot does not invalidate the verdict.
		if img, err := h.deps.Plot(res); err == nil {
			res.Plot = base64.StdEncoding.EncodeToString(img)
		}
	}
	writeJSON(w, http.StatusOK, screenResponse{
		Screening: res,
		Message:   res.Message(),
		Gauge:     render.NewGauge(res.Probability),
	})
}

func (h *ScreenHandler) screen(ctx context.Context, req screenRequest) (types.Screening, error) {
	if req.Samples != "" {
		return h.deps.Screen(ctx, req.Samples)
	}
	return h.deps.ScreenValues(ctx, req.Values)
}
