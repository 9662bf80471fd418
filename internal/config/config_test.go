package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse(env(map[string]string{"DB_NAME": "rally.db", "PORT": "8080"}))
	require.NoError(t, err)

	assert.Equal(t, "rally.db", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./migrations", cfg.MigrationsDir)
	assert.Equal(t, 5*time.Minute, cfg.SnapshotTTL)
	assert.Equal(t, 4*time.Minute, cfg.RefreshInterval)
	assert.False(t, cfg.Slack.Enabled())
	assert.Empty(t, cfg.ProjectID)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := parse(env(map[string]string{
		"DB_NAME":           "rally.db",
		"PORT":              "9000",
		"SLACK_BOT_TOKEN":   "xoxb-1",
		"SLACK_CHANNEL_ID":  "C123",
		"TURSO_PRIMARY_URL": "libsql://rally.turso.io",
		"GCP_PROJECT":       "rally",
		"SNAPSHOT_TTL":      "30s",
		"REFRESH_INTERVAL":  "1m",
		"MIGRATIONS_DIR":    "/srv/migrations",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.Slack.Enabled())
	assert.Equal(t, "libsql://rally.turso.io", cfg.Turso.PrimaryURL)
	assert.Equal(t, "rally", cfg.ProjectID)
	assert.Equal(t, 30*time.Second, cfg.SnapshotTTL)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "/srv/migrations", cfg.MigrationsDir)
}

func TestParse_Errors(t *testing.T) {
	_, err := parse(env(map[string]string{"PORT": "8080"}))
	assert.ErrorContains(t, err, "DB_NAME")

	_, err = parse(env(map[string]string{"DB_NAME": "x", "PORT": "1", "SNAPSHOT_TTL": "soon"}))
	assert.ErrorContains(t, err, "SNAPSHOT_TTL")

	_, err = parse(env(map[string]string{"DB_NAME": "x", "PORT": "1", "REFRESH_INTERVAL": "-1s"}))
	assert.ErrorContains(t, err, "must be positive")
}
