package processor

import (
	"time"

	"github.com/mauv0809/rally-tribble/internal/notifier"
	"github.com/mauv0809/rally-tribble/internal/tournament"
)

// Store defines the database operations required by the processor.
type Store interface {
	GetTournament(tournamentID int) (*tournament.Tournament, error)
	GetPlayers(playerIDs []int) ([]tournament.Player, error)
}

// Invalidator drops cached data loaded at or before a point in time.
type Invalidator interface {
	Invalidate(at time.Time)
}

// Notifier defines the notification operations required by the processor.
type Notifier interface {
	notifier.Notifier
}
