package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName          string
	MigrationsDir   string
	Port            string
	Slack           SlackConfig
	Turso           TursoConfig
	ProjectID       string
	SnapshotTTL     time.Duration
	RefreshInterval time.Duration
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

// Enabled reports whether results can be posted to a channel.
func (c SlackConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
