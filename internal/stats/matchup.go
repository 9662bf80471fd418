package stats

import (
	"cmp"
	"slices"

	"github.com/mauv0809/rally-tribble/internal/tournament"
)

const (
	// MinMatchupGames is the sample a partner or opponent needs before it is ranked.
	MinMatchupGames = 2
	// MatchupListSize is the length of the partner and opponent lists.
	MatchupListSize = 3
)

// Matchups tallies playerID's decisive games across every tournament, whatever its status,
// by partner and by opponent.
func Matchups(tournaments []tournament.Tournament, playerID int) MatchupSummary {
	summary := MatchupSummary{
		PlayerID:  playerID,
		Partners:  make(map[int]*PartnerTally),
		Opponents: make(map[int]*OpponentTally),
	}

	for _, t := range tournaments {
		for _, g := range t.Games {
			if !g.IsDecisive() {
				continue
			}
			team := g.TeamOf(playerID)
			if team == 0 {
				continue
			}
			own, other := g.Team1, g.Team2
			if team == 2 {
				own, other = g.Team2, g.Team1
			}
			won := g.Winner() == team

			for _, p := range own {
				if p == playerID {
					continue
				}
				tally, ok := summary.Partners[p]
				if !ok {
					tally = &PartnerTally{}
					summary.Partners[p] = tally
				}
				tally.GamesPlayed++
				if won {
					tally.Wins++
				} else {
					tally.Losses++
				}
			}

			for _, o := range other {
				tally, ok := summary.Opponents[o]
				if !ok {
					tally = &OpponentTally{}
					summary.Opponents[o] = tally
				}
				tally.GamesPlayed++
				if !won {
					tally.Losses++
				}
			}
		}
	}
	return summary
}

// FavouritePartners ranks partners with enough shared games by win percentage.
func FavouritePartners(summary MatchupSummary, names Names) []PartnerStat {
	rows := make([]PartnerStat, 0, len(summary.Partners))
	for _, id := range sortedKeys(summary.Partners) {
		tally := summary.Partners[id]
		if tally.GamesPlayed < MinMatchupGames {
			continue
		}
		rows = append(rows, PartnerStat{
			PlayerID:    id,
			Name:        names.Label(id),
			GamesPlayed: tally.GamesPlayed,
			Wins:        tally.Wins,
			Losses:      tally.Losses,
			WinPct:      float64(tally.Wins) / float64(tally.GamesPlayed),
		})
	}
	slices.SortStableFunc(rows, func(a, b PartnerStat) int {
		return cmp.Compare(b.WinPct, a.WinPct)
	})
	return limit(rows, MatchupListSize)
}

// ToughestOpponents ranks opponents the player has lost to at least once by loss percentage.
func ToughestOpponents(summary MatchupSummary, names Names) []OpponentStat {
	rows := make([]OpponentStat, 0, len(summary.Opponents))
	for _, id := range sortedKeys(summary.Opponents) {
		tally := summary.Opponents[id]
		if tally.GamesPlayed < MinMatchupGames || tally.Losses == 0 {
			continue
		}
		rows = append(rows, OpponentStat{
			PlayerID:    id,
			Name:        names.Label(id),
			GamesPlayed: tally.GamesPlayed,
			Losses:      tally.Losses,
			LossPct:     float64(tally.Losses) / float64(tally.GamesPlayed),
		})
	}
	slices.SortStableFunc(rows, func(a, b OpponentStat) int {
		return cmp.Compare(b.LossPct, a.LossPct)
	})
	return limit(rows, MatchupListSize)
}

// Report builds the favourite partner and toughest opponent lists for one player.
func Report(tournaments []tournament.Tournament, playerID int, names Names) MatchupReport {
	summary := Matchups(tournaments, playerID)
	return MatchupReport{
		PlayerID:          playerID,
		Name:              names.Label(playerID),
		FavouritePartners: FavouritePartners(summary, names),
		ToughestOpponents: ToughestOpponents(summary, names),
	}
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
