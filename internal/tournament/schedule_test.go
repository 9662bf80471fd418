package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchedule(t *testing.T) {
	t.Run("too few players", func(t *testing.T) {
		assert.Nil(t, GenerateSchedule(1, []int{1, 2, 3}))
	})

	t.Run("four players play every partition once", func(t *testing.T) {
		games := GenerateSchedule(7, []int{1, 2, 3, 4})
		require.Len(t, games, 3)

		partners := make(map[[2]int]int)
		for i, g := range games {
			assert.Equal(t, 7, g.TournamentID)
			assert.Equal(t, i+1, g.GameNumber)
			partners[canonical(g.Team1)]++
			partners[canonical(g.Team2)]++
		}
		assert.Len(t, partners, 6, "each of the six pairs partners exactly once")
	})

	t.Run("odd pool sits one player out per game", func(t *testing.T) {
		games := GenerateSchedule(1, []int{1, 2, 3, 4, 5})
		require.Len(t, games, 5)
		sitOuts := make(map[int]int)
		for _, g := range games {
			in := make(map[int]bool)
			for _, p := range g.Players() {
				in[p] = true
			}
			for p := 1; p <= 5; p++ {
				if !in[p] {
					sitOuts[p]++
				}
			}
		}
		for p := 1; p <= 5; p++ {
			assert.Equal(t, 1, sitOuts[p], "player %d should sit out exactly once", p)
		}
	})

	t.Run("games played differ by at most one", func(t *testing.T) {
		for n := 4; n <= 12; n++ {
			ids := make([]int, n)
			for i := range ids {
				ids[i] = i + 1
			}
			played := make(map[int]int)
			for _, g := range GenerateSchedule(1, ids) {
				for _, p := range g.Players() {
					played[p]++
				}
			}
			require.Len(t, played, n, "every player gets a game (n=%d)", n)
			lo, hi := played[1], played[1]
			for _, c := range played {
				lo, hi = min(lo, c), max(hi, c)
			}
			assert.LessOrEqual(t, hi-lo, 1, "n=%d played %v", n, played)
		}
	})

	t.Run("six players", func(t *testing.T) {
		games := GenerateSchedule(1, []int{1, 2, 3, 4, 5, 6})
		require.Len(t, games, 7, "fifteen partnerships make seven games")
		played := make(map[int]int)
		for _, g := range games {
			for _, p := range g.Players() {
				played[p]++
			}
		}
		assert.Equal(t, map[int]int{1: 5, 2: 5, 3: 5, 4: 4, 5: 4, 6: 5}, played)
	})

	t.Run("seven players", func(t *testing.T) {
		games := GenerateSchedule(1, []int{1, 2, 3, 4, 5, 6, 7})
		require.Len(t, games, 10)
		played := make(map[int]int)
		partners := make(map[[2]int]int)
		for _, g := range games {
			for _, p := range g.Players() {
				played[p]++
			}
			partners[canonical(g.Team1)]++
			partners[canonical(g.Team2)]++
		}
		assert.Equal(t, map[int]int{1: 6, 2: 6, 3: 6, 4: 6, 5: 5, 6: 5, 7: 6}, played)
		for pair, c := range partners {
			assert.Equal(t, 1, c, "pair %v partners more than once", pair)
		}
	})

	t.Run("four distinct players in every game", func(t *testing.T) {
		for n := 4; n <= 10; n++ {
			ids := make([]int, n)
			for i := range ids {
				ids[i] = 100 + i
			}
			for _, g := range GenerateSchedule(1, ids) {
				seen := make(map[int]bool)
				for _, p := range g.Players() {
					assert.False(t, seen[p], "player %d appears twice in game %d (n=%d)", p, g.GameNumber, n)
					seen[p] = true
				}
			}
		}
	})
}

func canonical(pair [2]int) [2]int {
	if pair[0] > pair[1] {
		return [2]int{pair[1], pair[0]}
	}
	return pair
}
