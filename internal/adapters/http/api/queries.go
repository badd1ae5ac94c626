package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/courtside/internal/adapters/export"
)

// Heatmap grid bounds.
const (
	defaultHeatmapCols = 12
	defaultHeatmapRows = 8
	maxHeatmapCells    = 100
)

// QueriesHandler handles read-only views of a match.
type QueriesHandler struct {
	deps Dependencies
}

// NewQueriesHandler creates a new queries handler.
func NewQueriesHandler(deps Dependencies) *QueriesHandler {
	return &QueriesHandler{deps: deps}
}

// HandleHighlights handles GET /matches/{matchID}/highlights.
func (h *QueriesHandler) HandleHighlights(w http.ResponseWriter, r *http.Request) {
	rects, err := h.deps.Highlights(r.Context(), matchID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rects)
}

// HandleStats handles GET /matches/{matchID}/stats?set=.
func (h *QueriesHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	set, err := setParam(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	view, err := h.deps.Stats(r.Context(), matchID(r), set)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleReplay handles GET /matches/{matchID}/replay/{set}/{index}.
func (h *QueriesHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	set, err := strconv.Atoi(chi.URLParam(r, "set"))
	if err != nil || set < 0 {
		writeRequestError(w, fmt.Errorf("%w: invalid set", ErrBadRequest))
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeRequestError(w, fmt.Errorf("%w: invalid index", ErrBadRequest))
		return
	}
	view, err := h.deps.Replay(r.Context(), matchID(r), set, index)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleHeatmap handles GET /matches/{matchID}/heatmap?set=&cols=&rows=.
func (h *QueriesHandler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	set, err := setParam(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	cols, err := intParam(r, "cols", defaultHeatmapCols, 1, maxHeatmapCells)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	rows, err := intParam(r, "rows", defaultHeatmapRows, 1, maxHeatmapCells)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	grid, err := h.deps.Heatmap(r.Context(), matchID(r), set, cols, rows)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// HandleHeatmapImage handles GET /matches/{matchID}/heatmap.png?set=.
func (h *QueriesHandler) HandleHeatmapImage(w http.ResponseWriter, r *http.Request) {
	set, err := setParam(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	points, rules, names, err := h.deps.CourtPoints(r.Context(), matchID(r), set)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteHeatmap(&buf, points, rules.Spatial, names); err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HandleExport handles GET /matches/{matchID}/export.xlsx.
func (h *QueriesHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Snapshot(r.Context(), matchID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, snap); err != nil {
		writeError(w, http.StatusInternalServerError, "export_failed", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snap.ID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
