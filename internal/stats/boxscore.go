package stats

import (
	"slices"

	"github.com/mauv0809/rally-tribble/internal/tournament"
)

// BoxScore folds games into per-player summaries.
//
// Every player in a game with at least one recorded score is credited a game played, so a
// tied game counts toward GamesPlayed only. Wins, losses and points come from decisive games.
// Unscored games contribute nothing. When playerIDs is non-empty the result is restricted to
// those players and each of them gets a row, even if it is all zeroes.
func BoxScore(games []tournament.Game, playerIDs []int) map[int]*PlayerSummary {
	summaries := make(map[int]*PlayerSummary)
	restricted := len(playerIDs) > 0
	for _, id := range playerIDs {
		summaries[id] = &PlayerSummary{PlayerID: id}
	}

	row := func(id int) *PlayerSummary {
		s, ok := summaries[id]
		if !ok {
			if restricted {
				return nil
			}
			s = &PlayerSummary{PlayerID: id}
			summaries[id] = s
		}
		return s
	}

	for _, g := range games {
		if !g.IsScored() {
			continue
		}
		winner := g.Winner()
		s1, s2 := g.Scores()
		for _, id := range g.Players() {
			s := row(id)
			if s == nil {
				continue
			}
			s.GamesPlayed++
			if winner == 0 {
				continue
			}
			team := g.TeamOf(id)
			pf, pa := s1, s2
			if team == 2 {
				pf, pa = s2, s1
			}
			s.PointsFor += pf
			s.PointsAgainst += pa
			if team == winner {
				s.Wins++
			} else {
				s.Losses++
			}
		}
	}
	return summaries
}

// TournamentBoxScore is the box score of one tournament's games, with a row for every player
// in its pool.
func TournamentBoxScore(t tournament.Tournament) map[int]*PlayerSummary {
	return BoxScore(t.Games, t.PlayerIDs)
}

// CareerBoxScore folds the games of every tournament, whatever its status.
func CareerBoxScore(tournaments []tournament.Tournament) map[int]*PlayerSummary {
	var games []tournament.Game
	for _, t := range tournaments {
		games = append(games, t.Games...)
	}
	return BoxScore(games, nil)
}

// Rows flattens a box score into a slice ordered by player id, filling in names when given.
func Rows(summaries map[int]*PlayerSummary, names Names) []PlayerSummary {
	rows := make([]PlayerSummary, 0, len(summaries))
	for _, s := range summaries {
		row := *s
		if names != nil {
			row.Name = names.Label(row.PlayerID)
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b PlayerSummary) int {
		return a.PlayerID - b.PlayerID
	})
	return rows
}
