package stats

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/mauv0809/rally-tribble/internal/tournament"
)

// BoardSize is the length of every achievement board.
const BoardSize = 3

// Leaderboard is the career box score of every known player, ranked for the overall standings.
// Players who never played get a zero row.
func Leaderboard(players []tournament.Player, tournaments []tournament.Tournament) []PlayerSummary {
	names := NewNames(players)
	career := CareerBoxScore(tournaments)
	for _, p := range players {
		if _, ok := career[p.ID]; !ok {
			career[p.ID] = &PlayerSummary{PlayerID: p.ID}
		}
	}
	return RankStandings(Rows(career, names))
}

// Champion returns the winner of a tournament: most wins, then best point difference, then the
// lowest player id. It reports false when no decisive game was played.
func Champion(t tournament.Tournament) (PlayerSummary, bool) {
	ranked := RankTournamentBoxScore(Rows(TournamentBoxScore(t), nil))
	if len(ranked) == 0 || ranked[0].Wins == 0 {
		return PlayerSummary{}, false
	}
	return ranked[0], true
}

// Achievements computes the per-player values behind the achievement boards. Tournament wins
// only count completed tournaments; streaks and games played cover the whole history.
func Achievements(players []tournament.Player, tournaments []tournament.Tournament) []AchievementRow {
	names := NewNames(players)
	rows := make(map[int]*AchievementRow)
	row := func(id int) *AchievementRow {
		r, ok := rows[id]
		if !ok {
			r = &AchievementRow{PlayerID: id, Name: names.Label(id)}
			rows[id] = r
		}
		return r
	}
	for _, p := range players {
		row(p.ID)
	}

	for _, s := range CareerBoxScore(tournaments) {
		row(s.PlayerID).GamesPlayed = s.GamesPlayed
	}
	for _, t := range tournaments {
		if t.Status != tournament.StatusCompleted {
			continue
		}
		if champ, ok := Champion(t); ok {
			row(champ.PlayerID).TournamentWins++
		}
	}
	for id, streak := range longestStreaks(tournaments) {
		row(id).LongestWinStreak = streak
	}

	out := make([]AchievementRow, 0, len(rows))
	for _, id := range sortedKeys(rows) {
		out = append(out, *rows[id])
	}
	return out
}

// longestStreaks walks decisive games in tournament creation order, then game order. A loss
// ends a streak and ties are skipped.
func longestStreaks(tournaments []tournament.Tournament) map[int]int {
	ordered := slices.Clone(tournaments)
	slices.SortStableFunc(ordered, func(a, b tournament.Tournament) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	current := make(map[int]int)
	best := make(map[int]int)
	for _, t := range ordered {
		games := slices.Clone(t.Games)
		slices.SortFunc(games, func(a, b tournament.Game) int {
			return cmp.Compare(a.GameNumber, b.GameNumber)
		})
		for _, g := range games {
			winner := g.Winner()
			if winner == 0 {
				continue
			}
			for _, id := range g.Players() {
				if g.TeamOf(id) != winner {
					current[id] = 0
					continue
				}
				current[id]++
				best[id] = max(best[id], current[id])
			}
		}
	}
	return best
}

// Boards builds the achievement page: champions, streaks, top duos and games played.
func Boards(players []tournament.Player, tournaments []tournament.Tournament) []Board {
	names := NewNames(players)
	rows := Achievements(players, tournaments)

	metricBoard := func(title, subtitle string, metric func(AchievementRow) int) Board {
		board := Board{Title: title, Subtitle: subtitle, Entries: []BoardEntry{}}
		for i, r := range TopByMetric(rows, metric, BoardSize) {
			board.Entries = append(board.Entries, BoardEntry{
				Rank:  i + 1,
				Label: r.Name,
				Value: fmt.Sprint(metric(r)),
			})
		}
		return board
	}

	duos := Board{Title: "Top Duos", Subtitle: "Highest win %", Entries: []BoardEntry{}}
	for i, d := range TopDuos(tournaments, names) {
		duos.Entries = append(duos.Entries, BoardEntry{
			Rank:  i + 1,
			Label: d.NameA + " & " + d.NameB,
			Value: fmt.Sprintf("%d%% (%d-%d)", int(math.Round(d.WinPct*100)), d.Wins, d.Losses()),
		})
	}

	return []Board{
		metricBoard("Tournament Champion", "Most tournament wins", func(r AchievementRow) int { return r.TournamentWins }),
		metricBoard("Streak Master", "Longest win streak", func(r AchievementRow) int { return r.LongestWinStreak }),
		duos,
		metricBoard("Ever-Present", "Most games played", func(r AchievementRow) int { return r.GamesPlayed }),
	}
}
