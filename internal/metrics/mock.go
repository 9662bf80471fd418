package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	tournamentsCreated int
	tournamentsClosed  map[string]int
	scoresSubmitted    int
	eventsProcessed    map[string]int
	statsDurations     map[string][]float64
	snapshotHits       int
	snapshotMisses     int
	slackNotifSent     int
	slackNotifFailed   int
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		tournamentsClosed: make(map[string]int),
		eventsProcessed:   make(map[string]int),
		statsDurations:    make(map[string][]float64),
	}
}

func (m *Mock) IncTournamentsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tournamentsCreated++
}

func (m *Mock) IncTournamentsClosed(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tournamentsClosed[status]++
}

func (m *Mock) IncScoresSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoresSubmitted++
}

func (m *Mock) IncEventsProcessed(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsProcessed[eventType]++
}

func (m *Mock) ObserveStatsDuration(view string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsDurations[view] = append(m.statsDurations[view], duration)
}

func (m *Mock) IncSnapshotHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotHits++
}

func (m *Mock) IncSnapshotMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotMisses++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// TournamentsCreated returns the number of times IncTournamentsCreated was called.
func (m *Mock) TournamentsCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tournamentsCreated
}

// TournamentsClosed returns the number of closes recorded for a status.
func (m *Mock) TournamentsClosed(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tournamentsClosed[status]
}

// ScoresSubmitted returns the number of times IncScoresSubmitted was called.
func (m *Mock) ScoresSubmitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scoresSubmitted
}

// EventsProcessed returns the number of events recorded for an event type.
func (m *Mock) EventsProcessed(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsProcessed[eventType]
}

// StatsObservations returns the number of durations observed for a view.
func (m *Mock) StatsObservations(view string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.statsDurations[view])
}

func (m *Mock) SnapshotHits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotHits
}

func (m *Mock) SnapshotMisses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotMisses
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

// StartupTime returns the last value passed to SetStartupTime.
func (m *Mock) StartupTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupTime
}

// MockStore is an in-memory MetricsStore.
type MockStore struct {
	mu     sync.Mutex
	values map[string]int
}

func NewMockStore() *MockStore {
	return &MockStore{values: make(map[string]int)}
}

func (m *MockStore) Increment(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key]++
}

func (m *MockStore) GetAll() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

// Get returns the current value of a key.
func (m *MockStore) Get(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}
