package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	TournamentsCreated prometheus.Counter
	TournamentsClosed  *prometheus.CounterVec
	ScoresSubmitted    prometheus.Counter
	EventsProcessed    *prometheus.CounterVec
	StatsDuration      *prometheus.HistogramVec
	SnapshotHits       prometheus.Counter
	SnapshotMisses     prometheus.Counter
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
