package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/event"
)

type EventHandler struct {
	dispatcher *event.Dispatcher
}

func NewEventHandler(dispatcher *event.Dispatcher) *EventHandler {
	return &EventHandler{dispatcher: dispatcher}
}

// RegisterRoutes mounts the Pub/Sub push endpoint
func (h *EventHandler) RegisterRoutes(mux *http.ServeMux, pushMw func(http.Handler) http.Handler) {
	mux.Handle("/events/push", pushMw(http.HandlerFunc(h.receivePush)))
}

func (h *EventHandler) receivePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// 1. Decode the push envelope
	var req dto.PubSubPushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid push envelope: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Message.MessageID == "" {
		http.Error(w, "Missing message ID", http.StatusBadRequest)
		return
	}

	// 2. Decode the message body
	data, err := base64.StdEncoding.DecodeString(req.Message.Data)
	if err != nil {
		http.Error(w, "Invalid message data: "+err.Error(), http.StatusBadRequest)
		return
	}

	// 3. Dispatch. A 2xx acks the message, a 5xx makes Pub/Sub redeliver it.
	if err := h.dispatcher.Handle(r.Context(), req.Message.EventType(), data); err != nil {
		if errors.Is(err, event.ErrUnknownKind) {
			// Ack kinds we do not handle, redelivery will not change that.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Error(w, "Failed to process event: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
