package stats

import (
	"encoding/json"
	"fmt"

	"github.com/mauv0809/rally-tribble/internal/tournament"
)

// PlayerSummary is a player's box score over some set of games.
type PlayerSummary struct {
	PlayerID      int    `json:"player_id"`
	Name          string `json:"name,omitempty"`
	GamesPlayed   int    `json:"games_played"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	PointsFor     int    `json:"points_for"`
	PointsAgainst int    `json:"points_against"`
}

// WinPct is wins over games played, 0 when nothing has been played.
func (s PlayerSummary) WinPct() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed)
}

func (s PlayerSummary) PointDiff() int {
	return s.PointsFor - s.PointsAgainst
}

// MarshalJSON adds the derived fields to the encoded summary.
func (s PlayerSummary) MarshalJSON() ([]byte, error) {
	type plain PlayerSummary
	return json.Marshal(struct {
		plain
		WinPct    float64 `json:"win_pct"`
		PointDiff int     `json:"point_diff"`
	}{plain(s), s.WinPct(), s.PointDiff()})
}

// DuoSummary is the record of an unordered pair of teammates. PlayerA is always the lower id.
type DuoSummary struct {
	PlayerA     int     `json:"player_a"`
	PlayerB     int     `json:"player_b"`
	NameA       string  `json:"name_a,omitempty"`
	NameB       string  `json:"name_b,omitempty"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	WinPct      float64 `json:"win_pct"`
}

func (d DuoSummary) Losses() int {
	return d.GamesPlayed - d.Wins
}

// PartnerTally accumulates a focal player's results alongside one partner.
type PartnerTally struct {
	GamesPlayed int
	Wins        int
	Losses      int
}

// OpponentTally accumulates a focal player's results against one opponent.
// Only the focal player's losses are tracked.
type OpponentTally struct {
	GamesPlayed int
	Losses      int
}

// MatchupSummary holds one player's partner and opponent tallies keyed by the other player's id.
type MatchupSummary struct {
	PlayerID  int
	Partners  map[int]*PartnerTally
	Opponents map[int]*OpponentTally
}

// PartnerStat is a ranked favourite-partner row.
type PartnerStat struct {
	PlayerID    int     `json:"player_id"`
	Name        string  `json:"name"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinPct      float64 `json:"win_pct"`
}

// OpponentStat is a ranked toughest-opponent row.
type OpponentStat struct {
	PlayerID    int     `json:"player_id"`
	Name        string  `json:"name"`
	GamesPlayed int     `json:"games_played"`
	Losses      int     `json:"losses"`
	LossPct     float64 `json:"loss_pct"`
}

// MatchupReport is the presentation of a MatchupSummary.
type MatchupReport struct {
	PlayerID          int            `json:"player_id"`
	Name              string         `json:"name"`
	FavouritePartners []PartnerStat  `json:"favourite_partners"`
	ToughestOpponents []OpponentStat `json:"toughest_opponents"`
}

// AchievementRow carries the per-player values the achievement boards rank on.
type AchievementRow struct {
	PlayerID         int    `json:"player_id"`
	Name             string `json:"name"`
	TournamentWins   int    `json:"tournament_wins"`
	LongestWinStreak int    `json:"longest_win_streak"`
	GamesPlayed      int    `json:"games_played"`
}

// Board is one titled top-N list. Entries is empty when nobody qualifies.
type Board struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	Entries  []BoardEntry `json:"entries"`
}

type BoardEntry struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Names resolves player ids to display names.
type Names map[int]string

// NewNames builds a lookup from store players.
func NewNames(players []tournament.Player) Names {
	names := make(Names, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	return names
}

// Label returns the player's name, or "Player <id>" for ids the lookup does not know.
func (n Names) Label(id int) string {
	if name, ok := n[id]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Player %d", id)
}
