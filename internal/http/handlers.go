package http

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally-tribble/internal/pubsub"
	"github.com/mauv0809/rally-tribble/internal/stats"
	"github.com/mauv0809/rally-tribble/internal/tournament"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK!"))
	}
}

// CountersHandler returns the event counters persisted in the metrics table.
func (s *Server) CountersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.Counters.GetAll()
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, counters)
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		s.Snapshots.Invalidate(s.Snapshots.Now())
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, players)
	}
}

func (s *Server) CreatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPlayerRequest
		if err := decodeBody(r, &req); err != nil {
			respondWithError(w, r, err)
			return
		}
		player, err := s.Store.AddPlayer(req.Name)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		s.Snapshots.Invalidate(s.Snapshots.Now())
		log.Info("Player added", "playerID", player.ID, "name", player.Name)
		respondWithJSON(w, http.StatusCreated, player)
	}
}

// ListTournamentsHandler lists every tournament, or only active ones with ?status=active.
func (s *Server) ListTournamentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			tournaments []tournament.Tournament
			err         error
		)
		switch status := r.URL.Query().Get("status"); status {
		case "":
			tournaments, err = s.Store.GetTournaments()
		case string(tournament.StatusActive):
			tournaments, err = s.Store.GetActiveTournaments()
		default:
			err = badRequest(fmt.Sprintf("unsupported status filter %q", status))
		}
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		if tournaments == nil {
			tournaments = []tournament.Tournament{}
		}
		respondWithJSON(w, http.StatusOK, tournaments)
	}
}

func (s *Server) CreateTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTournamentRequest
		if err := decodeBody(r, &req); err != nil {
			respondWithError(w, r, err)
			return
		}
		t, err := s.Store.CreateTournament(req.PlayerIDs)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		s.Metrics.IncTournamentsCreated()
		s.publish(r, pubsub.EventTournamentCreated, t.ID, 0)
		log.Info("Tournament created", "tournamentID", t.ID, "players", len(t.PlayerIDs), "games", len(t.Games))
		respondWithJSON(w, http.StatusCreated, t)
	}
}

func (s *Server) GetTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		t, err := s.Store.GetTournament(id)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, t)
	}
}

// BoxScoreHandler returns the ranked standings of one tournament, live or finished.
func (s *Server) BoxScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		t, err := s.Store.GetTournament(id)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		players, err := s.Store.GetPlayers(t.PlayerIDs)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		report := timed(s, "boxscore", func() stats.TournamentReport {
			return stats.NewTournamentReport(*t, stats.NewNames(players))
		})
		respondWithJSON(w, http.StatusOK, report)
	}
}

func (s *Server) SubmitScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		var req submitScoreRequest
		if err := decodeBody(r, &req); err != nil {
			respondWithError(w, r, err)
			return
		}
		if req.GameNumber <= 0 || req.ScoreTeam1 == nil || req.ScoreTeam2 == nil {
			respondWithError(w, r, badRequest("game_number, score_team1 and score_team2 are required"))
			return
		}

		t, err := s.Store.SubmitScore(id, req.GameNumber, *req.ScoreTeam1, *req.ScoreTeam2)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		s.Metrics.IncScoresSubmitted()
		s.publish(r, pubsub.EventScoreSubmitted, id, req.GameNumber)
		log.Info("Score submitted", "tournamentID", id, "game", req.GameNumber, "score", fmt.Sprintf("%d-%d", *req.ScoreTeam1, *req.ScoreTeam2))
		respondWithJSON(w, http.StatusOK, t)
	}
}

// CloseTournamentHandler moves an active tournament to the given terminal status.
func (s *Server) CloseTournamentHandler(status tournament.Status) http.HandlerFunc {
	closeFn := s.Store.CompleteTournament
	eventType := pubsub.EventTournamentCompleted
	if status == tournament.StatusCancelled {
		closeFn = s.Store.CancelTournament
		eventType = pubsub.EventTournamentCancelled
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		t, err := closeFn(id)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		s.Metrics.IncTournamentsClosed(string(status))
		s.publish(r, eventType, id, 0)
		log.Info("Tournament closed", "tournamentID", id, "status", status)
		respondWithJSON(w, http.StatusOK, t)
	}
}
