package tournament

// Store defines the interface for interacting with players and tournaments.
type Store interface {
	AddPlayer(name string) (Player, error)
	GetAllPlayers() ([]Player, error)
	GetPlayers(playerIDs []int) ([]Player, error)
	CreateTournament(playerIDs []int) (*Tournament, error)
	GetTournament(tournamentID int) (*Tournament, error)
	GetTournaments() ([]Tournament, error)
	GetActiveTournaments() ([]Tournament, error)
	SubmitScore(tournamentID, gameNumber, scoreTeam1, scoreTeam2 int) (*Tournament, error)
	CompleteTournament(tournamentID int) (*Tournament, error)
	CancelTournament(tournamentID int) (*Tournament, error)
	Clear()
}
