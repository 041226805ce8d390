package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/wolfman30/venue-booking-agent/pkg/logging"
)

const maxWebhookBody = 1 << 20

// Handler wires fulfillment webhook requests to the dispatcher.
type Handler struct {
	dispatcher *Dispatcher
	logger     *logging.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(dispatcher *Dispatcher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Fulfill handles POST /webhook.
func (h *Handler) Fulfill(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook handler panicked", "panic", fmt.Sprint(rec))
			h.writeJSON(w, http.StatusInternalServerError, WebhookResponse{FulfillmentText: InternalErrorReply})
		}
	}()

	var req WebhookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&req); err != nil {
		h.logger.Error("failed to decode webhook request", "error", err)
		h.writeJSON(w, http.StatusBadRequest, WebhookResponse{FulfillmentText: InternalErrorReply})
		return
	}

	resp, err := h.dispatcher.Handle(r.Context(), req)
	if errors.Is(err, ErrInternal) {
		h.writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
