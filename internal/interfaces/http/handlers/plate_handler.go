package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/brailleforge/brailleforge/internal/application/plate"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/logging"
	"github.com/brailleforge/brailleforge/pkg/errors"
	platetypes "github.com/brailleforge/brailleforge/pkg/types/plate"
)

// PlateHandler serves plate generation and preview requests.
type PlateHandler struct {
	svc         *plate.Service
	maxBodySize int64
	log         logging.Logger
}

// NewPlateHandler creates a PlateHandler. maxBodySize bounds the accepted
// request body in bytes; zero or negative disables the limit.
func NewPlateHandler(svc *plate.Service, maxBodySize int64, log logging.Logger) *PlateHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &PlateHandler{
		svc:         svc,
		maxBodySize: maxBodySize,
		log:         log.Named("http.plate"),
	}
}

// Generate handles POST /api/v1/plates/generate and streams back a binary
// STL attachment. Degradation flags travel in response headers so clients
// get them without parsing the geometry.
func (h *PlateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, "")
}

// GeneratePositive handles the legacy POST /generate_braille_stl route.
func (h *PlateHandler) GeneratePositive(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, string(platetypes.KindPositive))
}

// GenerateCounter handles the legacy POST /generate_counter_plate_stl route.
func (h *PlateHandler) GenerateCounter(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, string(platetypes.KindCounter))
}

func (h *PlateHandler) generate(w http.ResponseWriter, r *http.Request, forcedKind string) {
	req, err := h.decodeRequest(w, r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if forcedKind != "" {
		req.PlateType = forcedKind
	}

	res, err := h.svc.Generate(r.Context(), req)
	if err != nil {
		h.log.Warn("plate generation rejected",
			logging.String("code", string(errors.GetCode(err))),
			logging.Err(err))
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "model/stl")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Stats.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.STL)))
	w.Header().Set("X-Plate-Degraded", strconv.FormatBool(res.Stats.Degraded))
	w.Header().Set("X-Plate-Watertight", strconv.FormatBool(res.Stats.Watertight))
	w.Header().Set("X-Plate-Engine", res.Stats.Engine)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.STL)
}

// Preview handles POST /api/v1/plates/preview. Same request body as Generate
// but returns the plate statistics as JSON instead of the model itself.
func (h *PlateHandler) Preview(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(w, r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	stats, err := h.svc.Preview(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *PlateHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (platetypes.GenerateRequest, error) {
	var req platetypes.GenerateRequest

	body := r.Body
	if h.maxBodySize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body")
	}
	return req, nil
}
