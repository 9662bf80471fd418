package http

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally-tribble/internal/stats"
	"github.com/slack-go/slack"
)

// LeaderboardCommandHandler answers /leaderboard with the career standings.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.Snapshots.Load()
		if err != nil {
			http.Error(w, "Failed to load stats", http.StatusInternalServerError)
			log.Error("Failed to load snapshot", "error", err)
			return
		}
		rows := timed(s, "rankings", func() []stats.PlayerSummary {
			return stats.Leaderboard(snap.Players, snap.Tournaments)
		})
		// Players who never played stay off the Slack board.
		played := rows[:0:0]
		for _, row := range rows {
			if row.GamesPlayed > 0 {
				played = append(played, row)
			}
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(played)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}
		respondWithSlackMsg(w, msg)
	}
}

// AchievementsCommandHandler answers /achievements with every achievement board.
func (s *Server) AchievementsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.Snapshots.Load()
		if err != nil {
			http.Error(w, "Failed to load stats", http.StatusInternalServerError)
			log.Error("Failed to load snapshot", "error", err)
			return
		}
		boards := timed(s, "achievements", func() []stats.Board {
			return stats.Boards(snap.Players, snap.Tournaments)
		})

		msg, err := s.Notifier.FormatAchievementsResponse(boards)
		if err != nil {
			http.Error(w, "Failed to format achievements", http.StatusInternalServerError)
			log.Error("Failed to format achievements", "error", err)
			return
		}
		respondWithSlackMsg(w, msg)
	}
}

// MatchupsCommandHandler answers /matchups <player> with that player's partners and opponents.
func (s *Server) MatchupsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			http.Error(w, "Failed to parse slash command", http.StatusBadRequest)
			log.Error("Failed to parse slash command", "error", err)
			return
		}
		log.Info("Matchups command", "user", cmd.UserName, "text", cmd.Text)

		snap, err := s.Snapshots.Load()
		if err != nil {
			http.Error(w, "Failed to load stats", http.StatusInternalServerError)
			log.Error("Failed to load snapshot", "error", err)
			return
		}

		var msg any
		if player, ok := findPlayer(snap.Players, cmd.Text); ok {
			msg, err = s.Notifier.FormatMatchupResponse(s.matchupReport(snap, player.ID))
		} else {
			msg, err = s.Notifier.FormatPlayerNotFoundResponse(cmd.Text)
		}
		if err != nil {
			http.Error(w, "Failed to format matchups", http.StatusInternalServerError)
			log.Error("Failed to format matchups", "error", err)
			return
		}
		respondWithSlackMsg(w, msg)
	}
}
