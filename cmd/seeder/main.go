package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/rally-tribble/internal/database"
	"github.com/mauv0809/rally-tribble/internal/tournament"
)

const (
	numPlayers     = 10
	numTournaments = 25
	winningScore   = 21
)

// Simplified config loading for the script. Without Turso settings it seeds the local DB_NAME file.
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{"DB_NAME": "rally.db", "MIGRATIONS_DIR": "./migrations"}
	for _, key := range []string{"DB_NAME", "MIGRATIONS_DIR", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()
	store := tournament.New(db)

	playerIDs := make([]int, 0, numPlayers)
	for i := range numPlayers {
		p, err := store.AddPlayer(fmt.Sprintf("Seeder Player %c", 'A'+i))
		if err != nil {
			log.Fatalf("Failed to insert dummy player: %s", err)
		}
		playerIDs = append(playerIDs, p.ID)
	}
	log.Info("Inserted dummy players", "count", len(playerIDs))

	startTime := time.Now()
	var scored int
	for i := range numTournaments {
		pool := pickPool(playerIDs)
		t, err := store.CreateTournament(pool)
		if err != nil {
			log.Fatalf("Failed to create tournament: %s", err)
		}

		for _, g := range t.Games {
			s1, s2 := randomScore()
			if _, err := store.SubmitScore(t.ID, g.GameNumber, s1, s2); err != nil {
				log.Fatalf("Failed to submit score for tournament %d game %d: %s", t.ID, g.GameNumber, err)
			}
			scored++
		}

		// Every tenth tournament is abandoned so the history has some cancellations.
		if i%10 == 9 {
			_, err = store.CancelTournament(t.ID)
		} else {
			_, err = store.CompleteTournament(t.ID)
		}
		if err != nil {
			log.Fatalf("Failed to close tournament %d: %s", t.ID, err)
		}
		log.Debug("Seeded tournament", "tournamentID", t.ID, "players", len(pool), "games", len(t.Games))
	}

	log.Info("Seeding complete", "tournaments", numTournaments, "games", scored, "duration", time.Since(startTime))
}

// pickPool returns between 4 and all of the players in random order.
func pickPool(playerIDs []int) []int {
	size := tournament.MinPlayers + rand.IntN(len(playerIDs)-tournament.MinPlayers+1)
	shuffled := append([]int(nil), playerIDs...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:size]
}

func randomScore() (int, int) {
	loser := rand.IntN(winningScore - 1)
	if rand.IntN(2) == 0 {
		return winningScore, loser
	}
	return loser, winningScore
}
