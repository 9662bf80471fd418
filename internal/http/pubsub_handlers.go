package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally-tribble/internal/pubsub"
)

// pushEnvelope is the body Pub/Sub push subscriptions POST to the service.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		ID   string `json:"messageId"`
		Data string `json:"data"` // base64-encoded MessagePack payload
	} `json:"message"`
}

// PushHandler receives tournament events from a push subscription and hands them to the
// processor. A non-2xx answer makes Pub/Sub redeliver.
func (s *Server) PushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := pubsub.EventType(r.PathValue("topic"))
		if !slices.Contains(pubsub.Topics, topic) {
			http.Error(w, "Unknown topic", http.StatusNotFound)
			return
		}

		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received push message", "topic", topic, "body", string(bodyBytes))

		var envelope pushEnvelope
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var evt pubsub.TournamentEvent
		if err := s.pubsub.ProcessMessage(rawData, &evt); err != nil {
			log.Error("Failed to decode event", "error", err, "messageID", envelope.Message.ID)
			http.Error(w, "Invalid event payload", http.StatusBadRequest)
			return
		}
		if evt.Type != topic {
			log.Warn("Event type does not match topic", "topic", topic, "type", evt.Type, "eventID", evt.ID)
			http.Error(w, "Event type does not match topic", http.StatusBadRequest)
			return
		}

		if err := s.Processor.HandleEvent(evt, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to process event", "error", err, "eventID", evt.ID)
			http.Error(w, "Failed to process event", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
