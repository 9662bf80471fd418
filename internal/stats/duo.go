package stats

import (
	"cmp"
	"slices"

	"github.com/mauv0809/rally-tribble/internal/tournament"
)

const (
	MinDuoGames = 3
	TopDuoCount = 3
)

type duoKey struct{ a, b int }

func newDuoKey(team [2]int) duoKey {
	return duoKey{min(team[0], team[1]), max(team[0], team[1])}
}

// Duos aggregates every teammate pair over the decisive games of all tournaments.
// Rows are ordered by pair.
func Duos(tournaments []tournament.Tournament, names Names) []DuoSummary {
	duos := make(map[duoKey]*DuoSummary)
	record := func(team [2]int, won bool) {
		key := newDuoKey(team)
		d, ok := duos[key]
		if !ok {
			d = &DuoSummary{PlayerA: key.a, PlayerB: key.b}
			duos[key] = d
		}
		d.GamesPlayed++
		if won {
			d.Wins++
		}
	}

	for _, t := range tournaments {
		for _, g := range t.Games {
			if !g.IsDecisive() {
				continue
			}
			record(g.Team1, g.Winner() == 1)
			record(g.Team2, g.Winner() == 2)
		}
	}

	rows := make([]DuoSummary, 0, len(duos))
	for _, d := range duos {
		d.WinPct = float64(d.Wins) / float64(d.GamesPlayed)
		if names != nil {
			d.NameA, d.NameB = names.Label(d.PlayerA), names.Label(d.PlayerB)
		}
		rows = append(rows, *d)
	}
	slices.SortFunc(rows, func(x, y DuoSummary) int {
		return cmp.Or(cmp.Compare(x.PlayerA, y.PlayerA), cmp.Compare(x.PlayerB, y.PlayerB))
	})
	return rows
}

// TopDuos returns the best three duos that have played at least three games together.
func TopDuos(tournaments []tournament.Tournament, names Names) []DuoSummary {
	return RankDuos(Duos(tournaments, names), MinDuoGames, TopDuoCount)
}
