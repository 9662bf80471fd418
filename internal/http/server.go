package http

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally-tribble/internal/config"
	"github.com/mauv0809/rally-tribble/internal/metrics"
	"github.com/mauv0809/rally-tribble/internal/notifier"
	"github.com/mauv0809/rally-tribble/internal/processor"
	"github.com/mauv0809/rally-tribble/internal/pubsub"
	"github.com/mauv0809/rally-tribble/internal/snapshot"
	"github.com/mauv0809/rally-tribble/internal/tournament"
)

func NewServer(store tournament.Store, snapshots *snapshot.Loader, metricsSvc metrics.Metrics, metricsHandler http.Handler, counters metrics.MetricsStore, cfg config.Config, notifier notifier.Notifier, processor *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Snapshots:      snapshots,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Counters:       counters,
		Cfg:            cfg,
		Notifier:       notifier,
		Processor:      processor,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Slash commands additionally verify the Slack request signature.
	api := func(h http.Handler) http.Handler {
		return Chain(h, requestIDMiddleware, paramsMiddleware)
	}
	slackCommand := func(h http.Handler) http.Handler {
		return Chain(h, requestIDMiddleware, paramsMiddleware, s.slackVerificationMiddleware)
	}
	if s.Cfg.Slack.SigningSecret == "" {
		log.Warn("SLACK_SIGNING_SECRET not set, slash commands are not verified")
	}

	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", api(s.HealthCheckHandler()))
	s.Router.Handle("GET /counters", api(s.CountersHandler()))
	s.Router.Handle("POST /clear", api(s.ClearStoreHandler()))

	s.Router.Handle("GET /players", api(s.ListPlayersHandler()))
	s.Router.Handle("POST /players", api(s.CreatePlayerHandler()))
	s.Router.Handle("GET /players/{id}/matchups", api(s.MatchupsHandler()))

	s.Router.Handle("GET /tournaments", api(s.ListTournamentsHandler()))
	s.Router.Handle("POST /tournaments", api(s.CreateTournamentHandler()))
	s.Router.Handle("GET /tournaments/{id}", api(s.GetTournamentHandler()))
	s.Router.Handle("GET /tournaments/{id}/boxscore", api(s.BoxScoreHandler()))
	s.Router.Handle("POST /tournaments/{id}/scores", api(s.SubmitScoreHandler()))
	s.Router.Handle("POST /tournaments/{id}/complete", api(s.CloseTournamentHandler(tournament.StatusCompleted)))
	s.Router.Handle("POST /tournaments/{id}/cancel", api(s.CloseTournamentHandler(tournament.StatusCancelled)))

	s.Router.Handle("GET /rankings", api(s.RankingsHandler()))
	s.Router.Handle("GET /duos", api(s.DuosHandler()))
	s.Router.Handle("GET /achievements", api(s.AchievementsHandler()))

	s.Router.Handle("POST /pubsub/{topic}", api(s.PushHandler()))

	s.Router.Handle("POST /slack/command/leaderboard", slackCommand(s.LeaderboardCommandHandler()))
	s.Router.Handle("POST /slack/command/achievements", slackCommand(s.AchievementsCommandHandler()))
	s.Router.Handle("POST /slack/command/matchups", slackCommand(s.MatchupsCommandHandler()))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
