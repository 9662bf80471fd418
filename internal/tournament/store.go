package tournament

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new tournament Store backed by db.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// AddPlayer inserts a new player and returns it with its assigned id.
func (s *store) AddPlayer(name string) (Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Player{}, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := Player{Name: name}
	err := s.db.QueryRow("INSERT INTO players (name, created_at) VALUES (?, ?) RETURNING id", name, time.Now().Unix()).Scan(&p.ID)
	if err != nil {
		log.Error("Failed to add player", "error", err, "name", name)
		return Player{}, fmt.Errorf("failed to add player: %w", err)
	}
	log.Info("Added new player to the store", "playerID", p.ID, "name", name)
	return p, nil
}

func (s *store) GetAllPlayers() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name FROM players ORDER BY id")
	if err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, err
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetPlayers returns the players matching the given ids. Unknown ids are skipped.
func (s *store) GetPlayers(playerIDs []int) ([]Player, error) {
	if len(playerIDs) == 0 {
		return []Player{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, name FROM players WHERE id IN (?" + strings.Repeat(",?", len(playerIDs)-1) + ") ORDER BY id"
	rows, err := s.db.Query(query, toAnySlice(playerIDs)...)
	if err != nil {
		log.Error("Failed to query players", "error", err)
		return nil, err
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// CreateTournament starts a new active tournament for the given pool and generates its schedule.
// Duplicate ids are ignored. Every player must exist and must not be in another active tournament.
func (s *store) CreateTournament(playerIDs []int) (*Tournament, error) {
	ids := dedupe(playerIDs)
	if len(ids) < MinPlayers {
		return nil, ErrNotEnoughPlayers
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var known int
	query := "SELECT COUNT(*) FROM players WHERE id IN (?" + strings.Repeat(",?", len(ids)-1) + ")"
	if err := tx.QueryRow(query, toAnySlice(ids)...).Scan(&known); err != nil {
		return nil, fmt.Errorf("failed to check players: %w", err)
	}
	if known != len(ids) {
		return nil, ErrPlayerNotFound
	}

	busy, err := activePlayers(tx)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if busy[id] {
			return nil, fmt.Errorf("%w: player %d", ErrPlayerBusy, id)
		}
	}

	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}

	var tournamentID int
	err = tx.QueryRow(
		"INSERT INTO tournaments (status, current_game, player_ids_json, created_at) VALUES (?, 1, ?, ?) RETURNING id",
		StatusActive, string(idsJSON), time.Now().Unix(),
	).Scan(&tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO games (tournament_id, game_number, team1_a, team1_b, team2_a, team2_b)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	games := GenerateSchedule(tournamentID, ids)
	for _, g := range games {
		if _, err := stmt.Exec(g.TournamentID, g.GameNumber, g.Team1[0], g.Team1[1], g.Team2[0], g.Team2[1]); err != nil {
			return nil, fmt.Errorf("failed to insert game %d: %w", g.GameNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tournament: %w", err)
	}
	log.Info("Started tournament", "tournamentID", tournamentID, "players", len(ids), "games", len(games))

	return s.getTournamentLocked(tournamentID)
}

func (s *store) GetTournament(tournamentID int) (*Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getTournamentLocked(tournamentID)
}

// GetTournaments returns every tournament in creation order with its games.
func (s *store) GetTournaments() ([]Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryTournaments("")
}

func (s *store) GetActiveTournaments() ([]Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryTournaments("WHERE status = ?", StatusActive)
}

// SubmitScore records the score of a game and moves the tournament on to its next unscored game.
func (s *store) SubmitScore(tournamentID, gameNumber, scoreTeam1, scoreTeam2 int) (*Tournament, error) {
	if scoreTeam1 < 0 || scoreTeam2 < 0 {
		return nil, ErrInvalidScore
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireActive(tx, tournamentID); err != nil {
		return nil, err
	}

	res, err := tx.Exec(
		"UPDATE games SET score_team1 = ?, score_team2 = ?, scored_at = ? WHERE tournament_id = ? AND game_number = ?",
		scoreTeam1, scoreTeam2, time.Now().Unix(), tournamentID, gameNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrGameNotFound
	}

	var next sql.NullInt64
	err = tx.QueryRow(
		"SELECT MIN(game_number) FROM games WHERE tournament_id = ? AND score_team1 IS NULL AND score_team2 IS NULL",
		tournamentID,
	).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("failed to find next game: %w", err)
	}
	if next.Valid {
		if _, err := tx.Exec("UPDATE tournaments SET current_game = ? WHERE id = ?", next.Int64, tournamentID); err != nil {
			return nil, fmt.Errorf("failed to advance current game: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit score: %w", err)
	}
	log.Info("Saved score", "tournamentID", tournamentID, "game", gameNumber, "score", fmt.Sprintf("%d:%d", scoreTeam1, scoreTeam2))

	return s.getTournamentLocked(tournamentID)
}

func (s *store) CompleteTournament(tournamentID int) (*Tournament, error) {
	return s.close(tournamentID, StatusCompleted)
}

func (s *store) CancelTournament(tournamentID int) (*Tournament, error) {
	return s.close(tournamentID, StatusCancelled)
}

// close moves an active tournament into a terminal status.
func (s *store) close(tournamentID int, status Status) (*Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		"UPDATE tournaments SET status = ?, closed_at = ? WHERE id = ? AND status = ?",
		status, time.Now().Unix(), tournamentID, StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update tournament status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM tournaments WHERE id = ?)", tournamentID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrTournamentClosed
	}
	log.Info("Closed tournament", "tournamentID", tournamentID, "status", status)

	return s.getTournamentLocked(tournamentID)
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"games", "tournaments", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func (s *store) getTournamentLocked(tournamentID int) (*Tournament, error) {
	tournaments, err := s.queryTournaments("WHERE id = ?", tournamentID)
	if err != nil {
		return nil, err
	}
	if len(tournaments) == 0 {
		return nil, ErrNotFound
	}
	return &tournaments[0], nil
}

// queryTournaments loads the tournaments matching where, then attaches their games.
func (s *store) queryTournaments(where string, args ...any) ([]Tournament, error) {
	rows, err := s.db.Query(`
		SELECT id, status, current_game, player_ids_json, created_at, closed_at
		FROM tournaments `+where+`
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		log.Error("Failed to query tournaments", "error", err)
		return nil, err
	}
	defer rows.Close()

	tournaments := []Tournament{}
	index := make(map[int]int)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			log.Error("Failed to scan tournament row", "error", err)
			continue
		}
		index[t.ID] = len(tournaments)
		tournaments = append(tournaments, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tournaments) == 0 {
		return tournaments, nil
	}

	ids := make([]int, 0, len(tournaments))
	for _, t := range tournaments {
		ids = append(ids, t.ID)
	}
	gameRows, err := s.db.Query(`
		SELECT tournament_id, game_number, team1_a, team1_b, team2_a, team2_b, score_team1, score_team2
		FROM games
		WHERE tournament_id IN (?`+strings.Repeat(",?", len(ids)-1)+`)
		ORDER BY tournament_id, game_number
	`, toAnySlice(ids)...)
	if err != nil {
		log.Error("Failed to query games", "error", err)
		return nil, err
	}
	defer gameRows.Close()

	for gameRows.Next() {
		g, err := scanGame(gameRows)
		if err != nil {
			log.Error("Failed to scan game row", "error", err)
			continue
		}
		i := index[g.TournamentID]
		tournaments[i].Games = append(tournaments[i].Games, g)
	}
	return tournaments, gameRows.Err()
}

func scanTournament(scanner interface{ Scan(...any) error }) (*Tournament, error) {
	var t Tournament
	var playersJSON sql.NullString
	var createdAt int64
	var closedAt sql.NullInt64

	if err := scanner.Scan(&t.ID, &t.Status, &t.CurrentGame, &playersJSON, &createdAt, &closedAt); err != nil {
		return nil, err
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	if closedAt.Valid {
		ts := time.Unix(closedAt.Int64, 0).UTC()
		t.ClosedAt = &ts
	}
	if playersJSON.Valid && playersJSON.String != "" {
		if err := json.Unmarshal([]byte(playersJSON.String), &t.PlayerIDs); err != nil {
			log.Error("Failed to unmarshal player_ids_json", "error", err, "tournamentID", t.ID)
		}
	}
	t.Games = []Game{}
	return &t, nil
}

func scanGame(scanner interface{ Scan(...any) error }) (Game, error) {
	var g Game
	var s1, s2 sql.NullInt64
	err := scanner.Scan(&g.TournamentID, &g.GameNumber, &g.Team1[0], &g.Team1[1], &g.Team2[0], &g.Team2[1], &s1, &s2)
	if err != nil {
		return Game{}, err
	}
	g.ScoreTeam1 = nullableInt(s1)
	g.ScoreTeam2 = nullableInt(s2)
	return g, nil
}

func requireActive(tx *sql.Tx, tournamentID int) error {
	var status Status
	err := tx.QueryRow("SELECT status FROM tournaments WHERE id = ?", tournamentID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load tournament: %w", err)
	}
	if status != StatusActive {
		return ErrTournamentClosed
	}
	return nil
}

// activePlayers returns the set of players in any active tournament.
func activePlayers(tx *sql.Tx) (map[int]bool, error) {
	rows, err := tx.Query("SELECT player_ids_json FROM tournaments WHERE status = ?", StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active tournaments: %w", err)
	}
	defer rows.Close()

	busy := make(map[int]bool)
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var ids []int
		if raw.Valid && raw.String != "" {
			if err := json.Unmarshal([]byte(raw.String), &ids); err != nil {
				log.Warn("Failed to unmarshal player_ids_json", "error", err)
				continue
			}
		}
		for _, id := range ids {
			busy[id] = true
		}
	}
	return busy, rows.Err()
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func toAnySlice[T any](s []T) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
