package tournament

const bye = -1

// GenerateSchedule builds a doubles schedule for the given pool. Partnerships come from a
// circle-method round robin, so every two players partner once. They are paired into games in
// round order: each partnership faces the earliest waiting one it shares no player with. At most
// one partnership is left without a game, so games played differ by at most one between players.
// The result is deterministic for a given input order.
func GenerateSchedule(tournamentID int, playerIDs []int) []Game {
	if len(playerIDs) < MinPlayers {
		return nil
	}

	var games []Game
	var waiting [][2]int
	for _, pair := range partnerships(playerIDs) {
		opponent := -1
		for i, w := range waiting {
			if disjoint(w, pair) {
				opponent = i
				break
			}
		}
		if opponent < 0 {
			waiting = append(waiting, pair)
			continue
		}
		games = append(games, Game{
			TournamentID: tournamentID,
			GameNumber:   len(games) + 1,
			Team1:        waiting[opponent],
			Team2:        pair,
		})
		waiting = append(waiting[:opponent], waiting[opponent+1:]...)
	}
	return games
}

// partnerships lists every pair of players, one round of the circle method after another.
// Each round is a perfect matching; for an odd pool the player drawn against the bye is skipped.
func partnerships(playerIDs []int) [][2]int {
	ring := append([]int(nil), playerIDs...)
	if len(ring)%2 == 1 {
		ring = append(ring, bye)
	}
	m := len(ring)

	var pairs [][2]int
	for round := 0; round < m-1; round++ {
		for i := 0; i < m/2; i++ {
			a, b := ring[i], ring[m-1-i]
			if a == bye || b == bye {
				continue
			}
			pairs = append(pairs, [2]int{a, b})
		}
		// Keep ring[0] fixed and rotate the rest one step clockwise.
		last := ring[m-1]
		copy(ring[2:], ring[1:m-1])
		ring[1] = last
	}
	return pairs
}

func disjoint(a, b [2]int) bool {
	return a[0] != b[0] && a[0] != b[1] && a[1] != b[0] && a[1] != b[1]
}
