package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/sport"
)

// SportsHandler serves the supported sports and their action vocabularies.
type SportsHandler struct{}

// NewSportsHandler creates a new sports handler.
func NewSportsHandler() *SportsHandler {
	return &SportsHandler{}
}

type sportInfo struct {
	Sport       model.Sport `json:"sport"`
	PeriodLabel string      `json:"period_label"`
}

// HandleList handles GET /sports.
func (h *SportsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	out := make([]sportInfo, 0, len(model.Sports()))
	for _, s := range model.Sports() {
		rules, err := sport.For(s)
		if err != nil {
			continue
		}
		out = append(out, sportInfo{Sport: s, PeriodLabel: rules.PeriodLabel()})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleActions handles GET /sports/{sport}/actions.
func (h *SportsHandler) HandleActions(w http.ResponseWriter, r *http.Request) {
	rules, err := sport.For(model.Sport(chi.URLParam(r, "sport")))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_sport", err)
		return
	}
	writeJSON(w, http.StatusOK, rules.Actions())
}
