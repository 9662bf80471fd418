package tournament

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// Status is the lifecycle state of a tournament. Completed and cancelled are terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// MinPlayers is the smallest pool that can fill one doubles game.
const MinPlayers = 4

var (
	ErrNotFound         = errors.New("tournament not found")
	ErrGameNotFound     = errors.New("game not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrTournamentClosed = errors.New("tournament is not active")
	ErrNotEnoughPlayers = errors.New("at least 4 distinct players are required")
	ErrPlayerBusy       = errors.New("player is already in an active tournament")
	ErrInvalidScore     = errors.New("scores must be non-negative")
	ErrInvalidName      = errors.New("player name is required")
)

// store handles all database operations for players and tournaments.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Player is reference data owned by the store. ID is the stable key used everywhere else.
type Player struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Game is one scheduled doubles game. A nil score means the game has not been played.
type Game struct {
	TournamentID int    `json:"tournament_id"`
	GameNumber   int    `json:"game_number"`
	Team1        [2]int `json:"team1"`
	Team2        [2]int `json:"team2"`
	ScoreTeam1   *int   `json:"score_team1,omitempty"`
	ScoreTeam2   *int   `json:"score_team2,omitempty"`
}

// IsScored reports whether at least one score has been recorded. The store always writes both
// scores together; a game carrying only one came from outside it and still counts as played.
func (g Game) IsScored() bool {
	return g.ScoreTeam1 != nil || g.ScoreTeam2 != nil
}

// IsDecisive reports whether both scores are recorded and differ, i.e. the game produced a winner.
func (g Game) IsDecisive() bool {
	return g.ScoreTeam1 != nil && g.ScoreTeam2 != nil && *g.ScoreTeam1 != *g.ScoreTeam2
}

// Winner returns 1 or 2 for the winning team of a decisive game and 0 otherwise.
func (g Game) Winner() int {
	if !g.IsDecisive() {
		return 0
	}
	if *g.ScoreTeam1 > *g.ScoreTeam2 {
		return 1
	}
	return 2
}

// Scores returns both scores with missing values reported as zero.
func (g Game) Scores() (int, int) {
	var s1, s2 int
	if g.ScoreTeam1 != nil {
		s1 = *g.ScoreTeam1
	}
	if g.ScoreTeam2 != nil {
		s2 = *g.ScoreTeam2
	}
	return s1, s2
}

// TeamOf returns 1 or 2 for the team the player is on, or 0 if they are not in the game.
func (g Game) TeamOf(playerID int) int {
	switch playerID {
	case g.Team1[0], g.Team1[1]:
		return 1
	case g.Team2[0], g.Team2[1]:
		return 2
	}
	return 0
}

// Players returns the four player ids of the game, team1 first.
func (g Game) Players() [4]int {
	return [4]int{g.Team1[0], g.Team1[1], g.Team2[0], g.Team2[1]}
}

// Tournament is a fixed player pool with a generated game schedule.
type Tournament struct {
	ID          int        `json:"tournament_id"`
	Status      Status     `json:"status"`
	CurrentGame int        `json:"current_game"`
	PlayerIDs   []int      `json:"player_ids"`
	Games       []Game     `json:"games"`
	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

// IsActive reports whether the tournament still accepts scores.
func (t Tournament) IsActive() bool {
	return t.Status == StatusActive
}

// Game looks up a game by its number.
func (t Tournament) Game(number int) (Game, bool) {
	for _, g := range t.Games {
		if g.GameNumber == number {
			return g, true
		}
	}
	return Game{}, false
}

// NextUnscoredGame returns the lowest numbered game without a score, or 0 when all are scored.
func (t Tournament) NextUnscoredGame() int {
	next := 0
	for _, g := range t.Games {
		if g.IsScored() {
			continue
		}
		if next == 0 || g.GameNumber < next {
			next = g.GameNumber
		}
	}
	return next
}
