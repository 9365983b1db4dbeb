package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"actionbot/core"
	"actionbot/middleware"
	"actionbot/models"
	"actionbot/services"
)

// APIHandler exposes the rule configuration surface over HTTP for dashboards
// and automation, mirroring the slash-command operations.
type APIHandler struct {
	triggersService services.TriggersService
	actionsService  services.ActionsService
}

func NewAPIHandler(triggersService services.TriggersService, actionsService services.ActionsService) *APIHandler {
	return &APIHandler{triggersService: triggersService, actionsService: actionsService}
}

// SetupEndpoints registers the admin API routes behind the auth middleware
func (h *APIHandler) SetupEndpoints(router *mux.Router, auth *middleware.APIKeyAuthMiddleware) {
	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware)

	api.HandleFunc("/triggers", h.handleListTriggers).Methods("GET")
	api.HandleFunc("/triggers", h.handleCreateTrigger).Methods("POST")
	api.HandleFunc("/triggers/{id}", h.handleDeleteTrigger).Methods("DELETE")
	api.HandleFunc("/actions", h.handleListActions).Methods("GET")
	api.HandleFunc("/actions", h.handleCreateAction).Methods("POST")
	api.HandleFunc("/actions/{id}", h.handleDeleteAction).Methods("DELETE")
}

type createTriggerRequest struct {
	GuildID          string                 `json:"guild_id"`
	Category         models.TriggerCategory `json:"category"`
	ActivationParams models.ParamMap        `json:"activation_params"`
}

type createActionRequest struct {
	GuildID      string            `json:"guild_id"`
	TriggerID    int64             `json:"trigger_id"`
	Kind         models.ActionKind `json:"kind"`
	ActionParams models.ParamMap   `json:"action_params"`
}

func (h *APIHandler) handleListTriggers(w http.ResponseWriter, r *http.Request) {
	guildID := r.URL.Query().Get("guild_id")
	if guildID == "" {
		writeError(w, http.StatusBadRequest, "guild_id query parameter is required")
		return
	}

	triggers, err := h.triggersService.ListTriggers(r.Context(), guildID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, triggers)
}

func (h *APIHandler) handleCreateTrigger(w http.ResponseWriter, r *http.Request) {
	var req createTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.GuildID == "" {
		writeError(w, http.StatusBadRequest, "guild_id is required")
		return
	}

	trigger, err := h.triggersService.CreateTrigger(r.Context(), req.GuildID, req.Category, req.ActivationParams)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trigger)
}

func (h *APIHandler) handleDeleteTrigger(w http.ResponseWriter, r *http.Request) {
	id, guildID, ok := parseIDAndGuild(w, r)
	if !ok {
		return
	}

	if err := h.triggersService.DeleteTrigger(r.Context(), id, guildID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) handleListActions(w http.ResponseWriter, r *http.Request) {
	guildID := r.URL.Query().Get("guild_id")
	if guildID == "" {
		writeError(w, http.StatusBadRequest, "guild_id query parameter is required")
		return
	}

	actions, err := h.actionsService.ListActions(r.Context(), guildID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actions)
}

func (h *APIHandler) handleCreateAction(w http.ResponseWriter, r *http.Request) {
	var req createActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.GuildID == "" {
		writeError(w, http.StatusBadRequest, "guild_id is required")
		return
	}

	action, err := h.actionsService.CreateAction(r.Context(), req.TriggerID, req.GuildID, req.Kind, req.ActionParams)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, action)
}

func (h *APIHandler) handleDeleteAction(w http.ResponseWriter, r *http.Request) {
	id, guildID, ok := parseIDAndGuild(w, r)
	if !ok {
		return
	}

	if err := h.actionsService.DeleteAction(r.Context(), id, guildID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseIDAndGuild(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be numeric")
		return 0, "", false
	}

	guildID := r.URL.Query().Get("guild_id")
	if guildID == "" {
		writeError(w, http.StatusBadRequest, "guild_id query parameter is required")
		return 0, "", false
	}
	return id, guildID, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case core.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case core.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, "not found")
	default:
		log.Printf("❌ Admin API request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("❌ Failed to write JSON response: %v", err)
	}
}
