package notifier

import (
	"sync"

	"github.com/mauv0809/rally-tribble/internal/stats"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendTournamentResultFunc func(report stats.TournamentReport, dryRun bool) error

	// Call records
	SendTournamentResultCalls []stats.TournamentReport
	SendTournamentResultDry   []bool
	LeaderboardCalls          [][]stats.PlayerSummary
	AchievementsCalls         [][]stats.Board
	MatchupCalls              []stats.MatchupReport
	PlayerNotFoundCalls       []string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendTournamentResultCalls = nil
	m.SendTournamentResultDry = nil
	m.LeaderboardCalls = nil
	m.AchievementsCalls = nil
	m.MatchupCalls = nil
	m.PlayerNotFoundCalls = nil
}

func (m *Mock) SendTournamentResult(report stats.TournamentReport, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendTournamentResultCalls = append(m.SendTournamentResultCalls, report)
	m.SendTournamentResultDry = append(m.SendTournamentResultDry, dryRun)
	if m.SendTournamentResultFunc != nil {
		return m.SendTournamentResultFunc(report, dryRun)
	}
	return nil
}

func (m *Mock) FormatLeaderboardResponse(rows []stats.PlayerSummary) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LeaderboardCalls = append(m.LeaderboardCalls, rows)
	return "formatted_leaderboard", nil
}

func (m *Mock) FormatAchievementsResponse(boards []stats.Board) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AchievementsCalls = append(m.AchievementsCalls, boards)
	return "formatted_achievements", nil
}

func (m *Mock) FormatMatchupResponse(report stats.MatchupReport) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchupCalls = append(m.MatchupCalls, report)
	return "formatted_matchups", nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayerNotFoundCalls = append(m.PlayerNotFoundCalls, query)
	return "formatted_player_not_found", nil
}
