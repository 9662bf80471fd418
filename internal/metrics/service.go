package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		TournamentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rally_tournaments_created_total",
			Help: "The total number of tournaments started.",
		}),
		TournamentsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rally_tournaments_closed_total",
			Help: "The total number of tournaments completed or cancelled.",
		}, []string{"status"}),
		ScoresSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rally_scores_submitted_total",
			Help: "The total number of game scores recorded.",
		}),
		EventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rally_events_processed_total",
			Help: "The total number of tournament events handled by the processor.",
		}, []string{"event_type"}),
		StatsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rally_stats_duration_seconds",
			Help:    "The duration of computing a derived stats view.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"view"}),
		SnapshotHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rally_snapshot_cache_hits_total",
			Help: "The total number of snapshot reads served from the cache.",
		}),
		SnapshotMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rally_snapshot_cache_misses_total",
			Help: "The total number of snapshot reads that went to the database.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rally_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rally_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rally_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.TournamentsCreated,
		s.TournamentsClosed,
		s.ScoresSubmitted,
		s.EventsProcessed,
		s.StatsDuration,
		s.SnapshotHits,
		s.SnapshotMisses,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncTournamentsCreated() {
	s.TournamentsCreated.Inc()
}

func (s *Service) IncTournamentsClosed(status string) {
	s.TournamentsClosed.WithLabelValues(status).Inc()
}

func (s *Service) IncScoresSubmitted() {
	s.ScoresSubmitted.Inc()
}

func (s *Service) IncEventsProcessed(eventType string) {
	s.EventsProcessed.WithLabelValues(eventType).Inc()
}

func (s *Service) ObserveStatsDuration(view string, duration float64) {
	s.StatsDuration.WithLabelValues(view).Observe(duration)
}

func (s *Service) IncSnapshotHits() {
	s.SnapshotHits.Inc()
}

func (s *Service) IncSnapshotMisses() {
	s.SnapshotMisses.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
