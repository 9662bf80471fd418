package stats

import (
	"cmp"
	"slices"
)

// Number is a metric a leaderboard can rank on.
type Number interface {
	~int | ~float64
}

// TopByMetric keeps the rows whose metric is positive, orders them by it descending and
// returns at most n. Equal values keep their input order. n <= 0 returns every qualifying row.
func TopByMetric[T any, M Number](rows []T, metric func(T) M, n int) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if metric(r) > 0 {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(metric(b), metric(a))
	})
	return limit(out, n)
}

// RankStandings orders overall standings by win percentage, then point difference, then wins.
func RankStandings(rows []PlayerSummary) []PlayerSummary {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b PlayerSummary) int {
		return cmp.Or(
			cmp.Compare(b.WinPct(), a.WinPct()),
			cmp.Compare(b.PointDiff(), a.PointDiff()),
			cmp.Compare(b.Wins, a.Wins),
		)
	})
	return out
}

// RankTournamentBoxScore orders one tournament's box score by wins, then point difference.
func RankTournamentBoxScore(rows []PlayerSummary) []PlayerSummary {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b PlayerSummary) int {
		return cmp.Or(
			cmp.Compare(b.Wins, a.Wins),
			cmp.Compare(b.PointDiff(), a.PointDiff()),
		)
	})
	return out
}

// RankDuos drops duos with fewer than minGames games, then orders the rest by win percentage,
// wins and games played, and returns at most n.
func RankDuos(rows []DuoSummary, minGames, n int) []DuoSummary {
	out := make([]DuoSummary, 0, len(rows))
	for _, d := range rows {
		if d.GamesPlayed >= minGames {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b DuoSummary) int {
		return cmp.Or(
			cmp.Compare(b.WinPct, a.WinPct),
			cmp.Compare(b.Wins, a.Wins),
			cmp.Compare(b.GamesPlayed, a.GamesPlayed),
		)
	})
	return limit(out, n)
}

func limit[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
