package processor

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally-tribble/internal/metrics"
	"github.com/mauv0809/rally-tribble/internal/pubsub"
	"github.com/mauv0809/rally-tribble/internal/stats"
)

// New creates a new Processor.
func New(store Store, cache Invalidator, notifier Notifier, metrics metrics.Metrics, counters metrics.MetricsStore) *Processor {
	return &Processor{
		store:    store,
		cache:    cache,
		notifier: notifier,
		metrics:  metrics,
		counters: counters,
	}
}

// HandleEvent applies one tournament event. Every event invalidates the snapshot cache; a
// completed tournament is also announced. An event published during a dry run stays one.
func (p *Processor) HandleEvent(evt pubsub.TournamentEvent, dryRun bool) error {
	dryRun = dryRun || evt.DryRun
	log.Info("Processing event", "eventID", evt.ID, "type", evt.Type, "tournamentID", evt.TournamentID)

	p.cache.Invalidate(evt.OccurredAt)
	p.metrics.IncEventsProcessed(string(evt.Type))

	switch evt.Type {
	case pubsub.EventTournamentCreated:
		// Nothing beyond the invalidation.
	case pubsub.EventScoreSubmitted:
		p.counters.Increment(metrics.KeyScoresSubmitted)
	case pubsub.EventTournamentCancelled:
		p.counters.Increment(metrics.KeyTournamentsCancelled)
	case pubsub.EventTournamentCompleted:
		p.counters.Increment(metrics.KeyTournamentsCompleted)
		return p.NotifyResult(evt.TournamentID, dryRun)
	default:
		log.Warn("Unknown event type", "type", evt.Type, "eventID", evt.ID)
	}
	return nil
}

// NotifyResult builds the final standings of a tournament and sends them to the notifier.
func (p *Processor) NotifyResult(tournamentID int, dryRun bool) error {
	t, err := p.store.GetTournament(tournamentID)
	if err != nil {
		return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	players, err := p.store.GetPlayers(t.PlayerIDs)
	if err != nil {
		return fmt.Errorf("failed to load players of tournament %d: %w", tournamentID, err)
	}

	report := stats.NewTournamentReport(*t, stats.NewNames(players))
	if err := p.notifier.SendTournamentResult(report, dryRun); err != nil {
		log.Error("Failed to send tournament result", "error", err, "tournamentID", tournamentID)
		return fmt.Errorf("failed to send result of tournament %d: %w", tournamentID, err)
	}
	if !dryRun {
		p.counters.Increment(metrics.KeyResultsPosted)
	}
	log.Info("Tournament result sent", "tournamentID", tournamentID, "dryRun", dryRun)
	return nil
}

// Deliver adapts the processor to in-process delivery: each message is decoded with codec and
// handled as if it had arrived from a push subscription.
func (p *Processor) Deliver(codec pubsub.PubSubClient) pubsub.DeliverFunc {
	return func(topic pubsub.EventType, data []byte) error {
		var evt pubsub.TournamentEvent
		if err := codec.ProcessMessage(data, &evt); err != nil {
			return fmt.Errorf("failed to decode %s event: %w", topic, err)
		}
		return p.HandleEvent(evt, false)
	}
}
