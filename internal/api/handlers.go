package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/flightdata"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/session"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/speech"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/websocket"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

// Handler holds the services the HTTP API exposes. The API mutates flight
// data only through the repository; the voice flow is untouched.
type Handler struct {
	repo     flightdata.Repository
	state    *session.State
	voicelog *session.VoiceLog
	input    *speech.Input
	output   *speech.Output
	wsServer *websocket.Server
	logger   *logger.Logger
}

// NewHandler creates the API handler.
func NewHandler(repo flightdata.Repository, state *session.State, voicelog *session.VoiceLog, input *speech.Input, output *speech.Output, wsServer *websocket.Server, log *logger.Logger) *Handler {
	return &Handler{
		repo:     repo,
		state:    state,
		voicelog: voicelog,
		input:    input,
		output:   output,
		wsServer: wsServer,
		logger:   log.Named("api-handler"),
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", logger.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// --- Checklists ---

func (h *Handler) GetChecklists(w http.ResponseWriter, r *http.Request) {
	checklists, err := h.repo.Checklists()
	if err != nil {
		h.logger.Error("Failed to load checklists", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to load checklists")
		return
	}
	h.respondJSON(w, http.StatusOK, checklists)
}

func (h *Handler) UpsertChecklist(w http.ResponseWriter, r *http.Request) {
	var cl flightdata.Checklist
	if err := json.NewDecoder(r.Body).Decode(&cl); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid checklist payload")
		return
	}
	if cl.Name == "" {
		h.respondError(w, http.StatusBadRequest, "checklist name is required")
		return
	}
	if cl.ID == "" {
		cl.ID = uuid.NewString()
	}
	for i := range cl.Items {
		if cl.Items[i].ID == "" {
			cl.Items[i].ID = uuid.NewString()
		}
	}
	if err := h.repo.UpsertChecklist(cl); err != nil {
		h.logger.Error("Failed to upsert checklist", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to store checklist")
		return
	}
	h.respondJSON(w, http.StatusOK, cl)
}

func (h *Handler) DeleteChecklist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.DeleteChecklist(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "checklist not found")
			return
		}
		h.logger.Error("Failed to delete checklist", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to delete checklist")
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}

// --- Routes ---

func (h *Handler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.repo.Routes()
	if err != nil {
		h.logger.Error("Failed to load routes", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to load routes")
		return
	}
	h.respondJSON(w, http.StatusOK, routes)
}

func (h *Handler) UpsertRoute(w http.ResponseWriter, r *http.Request) {
	var route flightdata.Route
	if err := json.NewDecoder(r.Body).Decode(&route); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid route payload")
		return
	}
	if route.Name == "" {
		h.respondError(w, http.StatusBadRequest, "route name is required")
		return
	}
	if route.ID == "" {
		route.ID = uuid.NewString()
	}
	for i := range route.Waypoints {
		if route.Waypoints[i].ID == "" {
			route.Waypoints[i].ID = uuid.NewString()
		}
	}
	if err := h.repo.UpsertRoute(route); err != nil {
		h.logger.Error("Failed to upsert route", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to store route")
		return
	}
	h.respondJSON(w, http.StatusOK, route)
}

func (h *Handler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.DeleteRoute(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "route not found")
			return
		}
		h.logger.Error("Failed to delete route", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to delete route")
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) GetActiveRoute(w http.ResponseWriter, r *http.Request) {
	route, err := h.repo.ActiveRoute()
	if err != nil {
		h.logger.Error("Failed to load active route", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to load active route")
		return
	}
	h.respondJSON(w, http.StatusOK, route)
}

func (h *Handler) SetActiveRoute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		h.respondError(w, http.StatusBadRequest, "route id is required")
		return
	}
	if err := h.repo.SetActiveRoute(req.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "route not found")
			return
		}
		h.logger.Error("Failed to set active route", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to set active route")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"active_route_id": req.ID})
}

// --- Aerodromes ---

func (h *Handler) GetAerodromes(w http.ResponseWriter, r *http.Request) {
	aerodromes, err := h.repo.Aerodromes()
	if err != nil {
		h.logger.Error("Failed to load aerodromes", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to load aerodromes")
		return
	}
	h.respondJSON(w, http.StatusOK, aerodromes)
}

func (h *Handler) UpsertAerodrome(w http.ResponseWriter, r *http.Request) {
	var aerodrome flightdata.Aerodrome
	if err := json.NewDecoder(r.Body).Decode(&aerodrome); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid aerodrome payload")
		return
	}
	if aerodrome.Name == "" && aerodrome.Code == "" {
		h.respondError(w, http.StatusBadRequest, "aerodrome name or code is required")
		return
	}
	if aerodrome.ID == "" {
		aerodrome.ID = uuid.NewString()
	}
	for i := range aerodrome.Runways {
		if aerodrome.Runways[i].ID == "" {
			aerodrome.Runways[i].ID = uuid.NewString()
		}
	}
	if err := h.repo.UpsertAerodrome(aerodrome); err != nil {
		h.logger.Error("Failed to upsert aerodrome", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to store aerodrome")
		return
	}
	h.respondJSON(w, http.StatusOK, aerodrome)
}

func (h *Handler) DeleteAerodrome(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.DeleteAerodrome(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "aerodrome not found")
			return
		}
		h.logger.Error("Failed to delete aerodrome", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to delete aerodrome")
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}

// --- Session and speech channels ---

func (h *Handler) GetVoiceLog(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.voicelog.Entries())
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"session": h.state.Snapshot(),
		"speech":  h.input.Status(),
		"clients": h.wsServer.ClientCount(),
	}
	if last, ok := h.voicelog.LastSystem(); ok {
		payload["last_reply"] = last
	}
	h.respondJSON(w, http.StatusOK, payload)
}

func (h *Handler) SetListeningMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	switch session.ListeningMode(req.Mode) {
	case session.ListeningSpeaker, session.ListeningHeadphones:
		h.state.SetListeningMode(session.ListeningMode(req.Mode))
	default:
		h.respondError(w, http.StatusBadRequest, "mode must be speaker or headphones")
		return
	}
	h.respondJSON(w, http.StatusOK, h.state.Snapshot())
}

func (h *Handler) SetRecognition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Enabled {
		h.input.Enable()
	} else {
		h.input.Stop()
	}
	h.respondJSON(w, http.StatusOK, h.state.Snapshot())
}

// RetryRecognition restarts recognition after a surfaced error.
func (h *Handler) RetryRecognition(w http.ResponseWriter, r *http.Request) {
	h.input.Enable()
	h.respondJSON(w, http.StatusOK, h.input.Status())
}

// Say speaks an arbitrary text through the output channel. Used by the
// editors to preview phrasing; the text is logged like any system reply.
func (h *Handler) Say(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		h.respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	h.voicelog.AppendSystem(req.Text)
	h.output.Speak(req.Text)
	h.respondJSON(w, http.StatusAccepted, map[string]string{"text": req.Text})
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsServer.HandleWS(w, r)
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
