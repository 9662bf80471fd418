package processor

import (
	"github.com/mauv0809/rally-tribble/internal/metrics"
)

// Processor reacts to tournament events: it keeps cached stats fresh and announces results.
type Processor struct {
	store    Store
	cache    Invalidator
	notifier Notifier
	metrics  metrics.Metrics
	counters metrics.MetricsStore
}
