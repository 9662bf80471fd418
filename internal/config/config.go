package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	defaultSnapshotTTL     = 5 * time.Minute
	defaultRefreshInterval = 4 * time.Minute
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := parse(os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
	return cfg
}

// parse builds a Config from a lookup function. DB_NAME and PORT are required; the Slack, Turso
// and Pub/Sub settings switch their integrations off when unset.
func parse(lookup func(string) (string, bool)) (Config, error) {
	var missing []string
	required := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		missing = append(missing, key)
		return ""
	}
	optional := func(key string) string {
		value, _ := lookup(key)
		return value
	}

	cfg := Config{
		DBName:        required("DB_NAME"),
		MigrationsDir: "./migrations",
		Port:          required("PORT"),
		Slack: SlackConfig{
			Token:         optional("SLACK_BOT_TOKEN"),
			ChannelID:     optional("SLACK_CHANNEL_ID"),
			SigningSecret: optional("SLACK_SIGNING_SECRET"),
		},
		Turso: TursoConfig{
			PrimaryURL: optional("TURSO_PRIMARY_URL"),
			AuthToken:  optional("TURSO_AUTH_TOKEN"),
		},
		ProjectID: optional("GCP_PROJECT"),
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %v", missing)
	}
	if dir := optional("MIGRATIONS_DIR"); dir != "" {
		cfg.MigrationsDir = dir
	}

	var err error
	if cfg.SnapshotTTL, err = duration(lookup, "SNAPSHOT_TTL", defaultSnapshotTTL); err != nil {
		return Config{}, err
	}
	if cfg.RefreshInterval, err = duration(lookup, "REFRESH_INTERVAL", defaultRefreshInterval); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func duration(lookup func(string) (string, bool), key string, fallback time.Duration) (time.Duration, error) {
	value, ok := lookup(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, value)
	}
	return d, nil
}
