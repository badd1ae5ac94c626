package api

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/okian/courtside/internal/adapters/export"
	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/model"
)

// CommandsHandler handles the operator commands that mutate a match. Every
// command honors the Idempotency-Key header.
type CommandsHandler struct {
	deps Dependencies
}

// NewCommandsHandler creates a new commands handler.
func NewCommandsHandler(deps Dependencies) *CommandsHandler {
	return &CommandsHandler{deps: deps}
}

type tapRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type assignRequest struct {
	PlayerID string `json:"player_id"`
}

type playersRequest struct {
	Players []model.Player `json:"players"`
}

func writeOutcome(w http.ResponseWriter, out service.Outcome, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleSelect handles POST /matches/{matchID}/select.
func (h *CommandsHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var sel service.Selection
	if err := decodeJSON(w, r, &sel); err != nil {
		writeRequestError(w, err)
		return
	}
	out, err := h.deps.SelectAction(r.Context(), matchID(r), commandID(r), sel)
	writeOutcome(w, out, err)
}

// HandleCancel handles POST /matches/{matchID}/cancel.
func (h *CommandsHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.CancelSelection(r.Context(), matchID(r), commandID(r))
	writeOutcome(w, out, err)
}

// HandleTap handles POST /matches/{matchID}/tap with normalized x and y.
func (h *CommandsHandler) HandleTap(w http.ResponseWriter, r *http.Request) {
	var req tapRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeRequestError(w, err)
		return
	}
	if req.X == nil || req.Y == nil {
		writeRequestError(w, fmt.Errorf("%w: x and y are required", ErrBadRequest))
		return
	}
	out, err := h.deps.RecordTap(r.Context(), matchID(r), commandID(r), *req.X, *req.Y)
	writeOutcome(w, out, err)
}

// HandleUndo handles POST /matches/{matchID}/undo.
func (h *CommandsHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Undo(r.Context(), matchID(r), commandID(r))
	writeOutcome(w, out, err)
}

// HandleAssign handles POST /matches/{matchID}/players/assign.
func (h *CommandsHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeRequestError(w, err)
		return
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		writeRequestError(w, fmt.Errorf("%w: missing player_id", ErrBadRequest))
		return
	}
	out, err := h.deps.AssignPlayer(r.Context(), matchID(r), commandID(r), req.PlayerID)
	writeOutcome(w, out, err)
}

// HandleSkip handles POST /matches/{matchID}/players/skip.
func (h *CommandsHandler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.SkipPlayerAssignment(r.Context(), matchID(r), commandID(r))
	writeOutcome(w, out, err)
}

// HandleSetPlayers handles PUT /matches/{matchID}/players. The roster is a
// JSON body or an uploaded xlsx sheet.
func (h *CommandsHandler) HandleSetPlayers(w http.ResponseWriter, r *http.Request) {
	var players []model.Player
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == xlsxContentType {
		var err error
		players, err = export.ReadRoster(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeRequestError(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}
	} else {
		var req playersRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeRequestError(w, err)
			return
		}
		players = req.Players
	}
	out, err := h.deps.SetPlayers(r.Context(), matchID(r), commandID(r), players)
	writeOutcome(w, out, err)
}

// HandleEndSet handles POST /matches/{matchID}/sets/end.
func (h *CommandsHandler) HandleEndSet(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.EndSet(r.Context(), matchID(r), commandID(r))
	writeOutcome(w, out, err)
}

// HandleStartSet handles POST /matches/{matchID}/sets/start.
func (h *CommandsHandler) HandleStartSet(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.StartNewSet(r.Context(), matchID(r), commandID(r))
	writeOutcome(w, out, err)
}

// HandleFinish handles POST /matches/{matchID}/finish.
func (h *CommandsHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.FinishMatch(r.Context(), matchID(r), commandID(r))
	writeOutcome(w, out, err)
}

// HandleSwitchSides handles POST /matches/{matchID}/sides/switch.
func (h *CommandsHandler) HandleSwitchSides(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.SwitchSides(r.Context(), matchID(r), commandID(r))
	writeOutcome(w, out, err)
}
