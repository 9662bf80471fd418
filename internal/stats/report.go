package stats

import "github.com/mauv0809/rally-tribble/internal/tournament"

// TournamentReport is the stats panel of one tournament.
type TournamentReport struct {
	TournamentID int               `json:"tournament_id"`
	Status       tournament.Status `json:"status"`
	GamesScored  int               `json:"games_scored"`
	GamesTotal   int               `json:"games_total"`
	Standings    []PlayerSummary   `json:"standings"`
	Champion     *PlayerSummary    `json:"champion,omitempty"`
}

// NewTournamentReport ranks a tournament's box score. The champion is only named once the
// tournament is completed.
func NewTournamentReport(t tournament.Tournament, names Names) TournamentReport {
	report := TournamentReport{
		TournamentID: t.ID,
		Status:       t.Status,
		GamesTotal:   len(t.Games),
		Standings:    RankTournamentBoxScore(Rows(TournamentBoxScore(t), names)),
	}
	for _, g := range t.Games {
		if g.IsScored() {
			report.GamesScored++
		}
	}
	if t.Status == tournament.StatusCompleted {
		if champ, ok := Champion(t); ok {
			champ.Name = names.Label(champ.PlayerID)
			report.Champion = &champ
		}
	}
	return report
}
