package notifier

import "github.com/mauv0809/rally-tribble/internal/stats"

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For finished tournaments
	SendTournamentResult(report stats.TournamentReport, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(rows []stats.PlayerSummary) (any, error)
	FormatAchievementsResponse(boards []stats.Board) (any, error)
	FormatMatchupResponse(report stats.MatchupReport) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
