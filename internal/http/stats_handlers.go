package http

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mauv0809/rally-tribble/internal/snapshot"
	"github.com/mauv0809/rally-tribble/internal/stats"
	"github.com/mauv0809/rally-tribble/internal/tournament"
)

// timed runs one stats computation and records how long it took.
func timed[T any](s *Server, view string, compute func() T) T {
	start := time.Now()
	out := compute()
	s.Metrics.ObserveStatsDuration(view, time.Since(start).Seconds())
	return out
}

func (s *Server) RankingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.Snapshots.Load()
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		rows := timed(s, "rankings", func() []stats.PlayerSummary {
			return stats.Leaderboard(snap.Players, snap.Tournaments)
		})
		respondWithJSON(w, http.StatusOK, rows)
	}
}

// DuosHandler returns the top duos, or every pair that played together with ?all=true.
func (s *Server) DuosHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.Snapshots.Load()
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		all := r.URL.Query().Get("all") == "true"
		duos := timed(s, "duos", func() []stats.DuoSummary {
			names := stats.NewNames(snap.Players)
			if all {
				return stats.Duos(snap.Tournaments, names)
			}
			return stats.TopDuos(snap.Tournaments, names)
		})
		if duos == nil {
			duos = []stats.DuoSummary{}
		}
		respondWithJSON(w, http.StatusOK, duos)
	}
}

func (s *Server) AchievementsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.Snapshots.Load()
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		boards := timed(s, "achievements", func() []stats.Board {
			return stats.Boards(snap.Players, snap.Tournaments)
		})
		respondWithJSON(w, http.StatusOK, boards)
	}
}

func (s *Server) MatchupsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		snap, err := s.Snapshots.Load()
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		if !slices.ContainsFunc(snap.Players, func(p tournament.Player) bool { return p.ID == id }) {
			respondWithError(w, r, tournament.ErrPlayerNotFound)
			return
		}
		respondWithJSON(w, http.StatusOK, s.matchupReport(snap, id))
	}
}

func (s *Server) matchupReport(snap snapshot.Snapshot, playerID int) stats.MatchupReport {
	return timed(s, "matchups", func() stats.MatchupReport {
		return stats.Report(snap.Tournaments, playerID, stats.NewNames(snap.Players))
	})
}

// findPlayer resolves free text to a player: an exact id, then a case-insensitive full name,
// then a unique name prefix.
func findPlayer(players []tournament.Player, query string) (tournament.Player, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return tournament.Player{}, false
	}
	if id, err := strconv.Atoi(strings.TrimPrefix(query, "#")); err == nil {
		i := slices.IndexFunc(players, func(p tournament.Player) bool { return p.ID == id })
		if i >= 0 {
			return players[i], true
		}
	}
	i := slices.IndexFunc(players, func(p tournament.Player) bool { return strings.EqualFold(p.Name, query) })
	if i >= 0 {
		return players[i], true
	}

	var match []tournament.Player
	lower := strings.ToLower(query)
	for _, p := range players {
		if strings.HasPrefix(strings.ToLower(p.Name), lower) {
			match = append(match, p)
		}
	}
	if len(match) == 1 {
		return match[0], true
	}
	return tournament.Player{}, false
}
