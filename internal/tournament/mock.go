package tournament

import "sync"

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	AddPlayerFunc            func(name string) (Player, error)
	GetAllPlayersFunc        func() ([]Player, error)
	GetPlayersFunc           func(playerIDs []int) ([]Player, error)
	CreateTournamentFunc     func(playerIDs []int) (*Tournament, error)
	GetTournamentFunc        func(tournamentID int) (*Tournament, error)
	GetTournamentsFunc       func() ([]Tournament, error)
	GetActiveTournamentsFunc func() ([]Tournament, error)
	SubmitScoreFunc          func(tournamentID, gameNumber, scoreTeam1, scoreTeam2 int) (*Tournament, error)
	CompleteTournamentFunc   func(tournamentID int) (*Tournament, error)
	CancelTournamentFunc     func(tournamentID int) (*Tournament, error)
	ClearFunc                func()

	// Call records
	AddPlayerCalls          []string
	CreateTournamentCalls   [][]int
	GetAllPlayersCalls      int
	GetTournamentsCalls     int
	SubmitScoreCalls        []SubmitScoreCall
	CompleteTournamentCalls []int
	CancelTournamentCalls   []int
}

// SubmitScoreCall holds the arguments for a call to SubmitScore.
type SubmitScoreCall struct {
	TournamentID int
	GameNumber   int
	ScoreTeam1   int
	ScoreTeam2   int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = nil
	m.CreateTournamentCalls = nil
	m.GetAllPlayersCalls = 0
	m.GetTournamentsCalls = 0
	m.SubmitScoreCalls = nil
	m.CompleteTournamentCalls = nil
	m.CancelTournamentCalls = nil
}

func (m *MockStore) AddPlayer(name string) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = append(m.AddPlayerCalls, name)
	if m.AddPlayerFunc != nil {
		return m.AddPlayerFunc(name)
	}
	return Player{ID: len(m.AddPlayerCalls), Name: name}, nil
}

func (m *MockStore) GetAllPlayers() ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetAllPlayersCalls++
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return []Player{}, nil
}

func (m *MockStore) GetPlayers(playerIDs []int) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(playerIDs)
	}
	return []Player{}, nil
}

func (m *MockStore) CreateTournament(playerIDs []int) (*Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateTournamentCalls = append(m.CreateTournamentCalls, playerIDs)
	if m.CreateTournamentFunc != nil {
		return m.CreateTournamentFunc(playerIDs)
	}
	t := &Tournament{ID: len(m.CreateTournamentCalls), Status: StatusActive, CurrentGame: 1, PlayerIDs: playerIDs}
	t.Games = GenerateSchedule(t.ID, playerIDs)
	return t, nil
}

func (m *MockStore) GetTournament(tournamentID int) (*Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetTournamentFunc != nil {
		return m.GetTournamentFunc(tournamentID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetTournaments() ([]Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetTournamentsCalls++
	if m.GetTournamentsFunc != nil {
		return m.GetTournamentsFunc()
	}
	return []Tournament{}, nil
}

func (m *MockStore) GetActiveTournaments() ([]Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetActiveTournamentsFunc != nil {
		return m.GetActiveTournamentsFunc()
	}
	return []Tournament{}, nil
}

func (m *MockStore) SubmitScore(tournamentID, gameNumber, scoreTeam1, scoreTeam2 int) (*Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubmitScoreCalls = append(m.SubmitScoreCalls, SubmitScoreCall{tournamentID, gameNumber, scoreTeam1, scoreTeam2})
	if m.SubmitScoreFunc != nil {
		return m.SubmitScoreFunc(tournamentID, gameNumber, scoreTeam1, scoreTeam2)
	}
	return &Tournament{ID: tournamentID, Status: StatusActive}, nil
}

func (m *MockStore) CompleteTournament(tournamentID int) (*Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteTournamentCalls = append(m.CompleteTournamentCalls, tournamentID)
	if m.CompleteTournamentFunc != nil {
		return m.CompleteTournamentFunc(tournamentID)
	}
	return &Tournament{ID: tournamentID, Status: StatusCompleted}, nil
}

func (m *MockStore) CancelTournament(tournamentID int) (*Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelTournamentCalls = append(m.CancelTournamentCalls, tournamentID)
	if m.CancelTournamentFunc != nil {
		return m.CancelTournamentFunc(tournamentID)
	}
	return &Tournament{ID: tournamentID, Status: StatusCancelled}, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
