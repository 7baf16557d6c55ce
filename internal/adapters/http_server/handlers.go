package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"brooklyn_demand/internal/app"
	"brooklyn_demand/internal/domain"
)

type Handlers struct{ D *app.DashboardService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type scenariosResponse struct {
	Scenarios []int `json:"scenarios"`
	Default   int   `json:"default"`
	Min       int   `json:"min"`
	Max       int   `json:"max"`
	Step      int   `json:"step"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/scenarios", h.listScenarios)
	s.mux.Get("/v1/legend", h.legend)
	s.mux.Get("/v1/map", h.getMap)
	s.mux.Get("/v1/amenities", h.listAmenities)
	s.mux.Get("/v1/table", h.getTable)
	s.mux.Get("/v1/table.xlsx", h.exportTable)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writePassError maps a failed pass to a problem. Nothing partial is rendered.
func writePassError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidScenario):
		writeProblem(w, http.StatusBadRequest, "Invalid scenario", err.Error())
	case errors.Is(err, domain.ErrDatasetNotFound):
		writeProblem(w, http.StatusNotFound, "Dataset not found", err.Error())
	case errors.Is(err, domain.ErrMalformedGeoJSON), errors.Is(err, domain.ErrMalformedDataset):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("malformed warehouse data")
		writeProblem(w, http.StatusBadGateway, "Malformed dataset", err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeProblem(w, http.StatusGatewayTimeout, "Timeout", "warehouse did not answer in time")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("pass failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "pass failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body, err := calcETagAndBody(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "encode failed")
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

// categoriesParam returns nil when ?categories is absent (every category)
// and an empty, non-nil selection when it is present but blank (none).
func categoriesParam(r *http.Request) []string {
	vals, ok := r.URL.Query()["categories"]
	if !ok {
		return nil
	}
	if sel := splitList(vals); sel != nil {
		return sel
	}
	return []string{}
}

// splitList reads "a,b" or repeated ?k=a&k=b.
func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (h *Handlers) listScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, scenariosResponse{
		Scenarios: app.Scenarios(),
		Default:   app.DefaultScenario,
		Min:       app.MinScenario,
		Max:       app.MaxScenario,
		Step:      app.ScenarioStep,
	})
}

func (h *Handlers) legend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.D.Legend())
}

func (h *Handlers) getMap(w http.ResponseWriter, r *http.Request) {
	pct, err := app.ParseScenario(r.URL.Query().Get("pct"))
	if err != nil {
		writePassError(w, r, err)
		return
	}
	mv, err := h.D.Map(r.Context(), pct)
	if err != nil {
		writePassError(w, r, err)
		return
	}

	if show, _ := strconv.ParseBool(r.URL.Query().Get("show_amenities")); show {
		layer, err := h.D.Amenities(r.Context(), categoriesParam(r))
		if err != nil {
			writePassError(w, r, err)
			return
		}
		mv.Amenities = &layer
	}
	writeJSON(w, r, mv)
}

func (h *Handlers) listAmenities(w http.ResponseWriter, r *http.Request) {
	layer, err := h.D.Amenities(r.Context(), categoriesParam(r))
	if err != nil {
		writePassError(w, r, err)
		return
	}
	writeJSON(w, r, layer)
}

func (h *Handlers) getTable(w http.ResponseWriter, r *http.Request) {
	pct, err := app.ParseScenario(r.URL.Query().Get("pct"))
	if err != nil {
		writePassError(w, r, err)
		return
	}
	t, err := h.D.Table(r.Context(), pct)
	if err != nil {
		writePassError(w, r, err)
		return
	}
	writeJSON(w, r, t)
}

func (h *Handlers) exportTable(w http.ResponseWriter, r *http.Request) {
	pct, err := app.ParseScenario(r.URL.Query().Get("pct"))
	if err != nil {
		writePassError(w, r, err)
		return
	}
	t, err := h.D.Table(r.Context(), pct)
	if err != nil {
		writePassError(w, r, err)
		return
	}
	writeXLSX(w, t)
}
