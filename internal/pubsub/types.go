package pubsub

import (
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client *pubsub.Client
}

// LocalClient delivers messages in-process, for running without Google Cloud.
type LocalClient struct {
	mu      sync.RWMutex
	deliver DeliverFunc
}

// DeliverFunc receives an encoded message on a topic.
type DeliverFunc func(topic EventType, data []byte) error

// EventType represents the type of event/message sent via pubsub. It doubles as the topic name.
type EventType string

const (
	EventTournamentCreated   EventType = "tournament-created"
	EventScoreSubmitted      EventType = "score-submitted"
	EventTournamentCompleted EventType = "tournament-completed"
	EventTournamentCancelled EventType = "tournament-cancelled"
)

// Topics lists every topic the service publishes to.
var Topics = []EventType{
	EventTournamentCreated,
	EventScoreSubmitted,
	EventTournamentCompleted,
	EventTournamentCancelled,
}

// TournamentEvent is the payload published after every tournament change.
type TournamentEvent struct {
	ID           string    `msgpack:"id"`
	Type         EventType `msgpack:"type"`
	TournamentID int       `msgpack:"tournament_id"`
	GameNumber   int       `msgpack:"game_number,omitempty"`
	OccurredAt   time.Time `msgpack:"occurred_at"`
	DryRun       bool      `msgpack:"dry_run,omitempty"`
}
