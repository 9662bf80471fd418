package http

import (
	"net/http"

	"github.com/mauv0809/rally-tribble/internal/config"
	"github.com/mauv0809/rally-tribble/internal/metrics"
	"github.com/mauv0809/rally-tribble/internal/notifier"
	"github.com/mauv0809/rally-tribble/internal/processor"
	"github.com/mauv0809/rally-tribble/internal/pubsub"
	"github.com/mauv0809/rally-tribble/internal/snapshot"
	"github.com/mauv0809/rally-tribble/internal/tournament"
)

type Server struct {
	Store          tournament.Store
	Snapshots      *snapshot.Loader
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Counters       metrics.MetricsStore
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

type createPlayerRequest struct {
	Name string `json:"name"`
}

type createTournamentRequest struct {
	PlayerIDs []int `json:"player_ids"`
}

// submitScoreRequest uses pointers so a missing score is told apart from a zero.
type submitScoreRequest struct {
	GameNumber int  `json:"game_number"`
	ScoreTeam1 *int `json:"score_team1"`
	ScoreTeam2 *int `json:"score_team2"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
