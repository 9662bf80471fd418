package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally-tribble/internal/pubsub"
	"github.com/mauv0809/rally-tribble/internal/tournament"
	"github.com/slack-go/slack"
)

// respondWithJSON writes v as a JSON body with the given status code.
func respondWithJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response to JSON", "error", err)
	}
}

// respondWithError maps store errors to status codes. Anything unknown is a 500 and is logged.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err, "method", r.Method, "url", r.URL.Path, "requestID", requestIDFromContext(r))
		msg = "internal error"
	}
	respondWithJSON(w, status, errorResponse{Error: msg, RequestID: requestIDFromContext(r)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tournament.ErrNotFound),
		errors.Is(err, tournament.ErrGameNotFound),
		errors.Is(err, tournament.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, tournament.ErrTournamentClosed),
		errors.Is(err, tournament.ErrPlayerBusy):
		return http.StatusConflict
	case errors.Is(err, tournament.ErrNotEnoughPlayers),
		errors.Is(err, tournament.ErrInvalidScore),
		errors.Is(err, tournament.ErrInvalidName),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Is(target error) bool { return target == errBadRequest }

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid " + name + ": " + strconv.Quote(raw))
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg any) {
	slackMsg, ok := msg.(slack.Message)
	if !ok {
		http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
		log.Error("Failed to cast message to slack.Message")
		return
	}
	respondWithJSON(w, http.StatusOK, slackMsg)
}

// publish announces a committed change. A failed publish leaves the change in place, so the
// snapshot is invalidated here instead of by the processor.
func (s *Server) publish(r *http.Request, eventType pubsub.EventType, tournamentID, gameNumber int) {
	evt := pubsub.NewEvent(eventType, tournamentID, gameNumber, s.Snapshots.Now())
	evt.DryRun = isDryRunFromContext(r)
	if err := s.pubsub.SendMessage(eventType, evt); err != nil {
		log.Warn("Failed to publish event", "error", err, "type", eventType, "tournamentID", tournamentID, "requestID", requestIDFromContext(r))
		s.Snapshots.Invalidate(evt.OccurredAt)
	}
}
