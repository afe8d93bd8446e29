package webhookstore

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SHXZ7/autofloww/internal/httpapi/response"
	"github.com/SHXZ7/autofloww/internal/workflow"
)

// Handler exposes the three webhook-router operations from spec §4.6 as
// chi routes, grounded on internal/api/handlers/webhook.go's handler
// shape.
type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Mount attaches the three routes to r.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/webhook/register/{id}", h.handleRegister)
	r.Post("/webhook/trigger/{id}", h.handleTrigger)
	r.Get("/webhook/list", h.handleList)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var wf workflow.Workflow
	if err := json.NewDecoder(r.Body).Decode(&wf); err != nil {
		response.BadRequest(w, h.logger, "invalid workflow body")
		return
	}
	if err := wf.Validate(); err != nil {
		response.BadRequest(w, h.logger, err.Error())
		return
	}

	h.store.Register(id, wf)
	response.JSON(w, h.logger, http.StatusOK, map[string]string{
		"message":     "workflow registered",
		"webhook_url": "/webhook/trigger/" + id,
	})
}

func (h *Handler) handleTrigger(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, h.logger, "failed to read request body")
		return
	}

	var req struct {
		Payload json.RawMessage `json:"payload"`
		Source  string          `json:"source"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			response.BadRequest(w, h.logger, "invalid trigger body")
			return
		}
	}

	result, err := h.store.Trigger(r.Context(), id, req.Payload, req.Source)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, h.logger, err.Error())
			return
		}
		response.JSON(w, h.logger, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}

	response.JSON(w, h.logger, http.StatusOK, map[string]any{
		"message": "workflow triggered",
		"result":  result,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ids := h.store.List()
	response.JSON(w, h.logger, http.StatusOK, map[string]any{
		"workflows": ids,
		"count":     len(ids),
	})
}
