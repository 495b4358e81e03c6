package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvAgentQueuePath    = "PLASTICWATCHA_AGENT_QUEUE_PATH"
	EnvAgentSyncInterval = "PLASTICWATCHA_AGENT_SYNC_INTERVAL"
)

// AgentConfig holds the field sync agent's settings: where the local
// queue database lives and how often connectivity is probed.
type AgentConfig struct {
	QueuePath    string `toml:"queue_path"`
	SyncInterval string `toml:"sync_interval"`
}

// SyncIntervalDuration returns SyncInterval as a time.Duration.
func (c *AgentConfig) SyncIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SyncInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AgentConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	if overlay.QueuePath != "" {
		c.QueuePath = overlay.QueuePath
	}
	if overlay.SyncInterval != "" {
		c.SyncInterval = overlay.SyncInterval
	}
}

func (c *AgentConfig) loadDefaults() {
	if c.QueuePath == "" {
		c.QueuePath = "plasticwatcha-queue.db"
	}
	if c.SyncInterval == "" {
		c.SyncInterval = "30s"
	}
}

func (c *AgentConfig) loadEnv() {
	if v := os.Getenv(EnvAgentQueuePath); v != "" {
		c.QueuePath = v
	}
	if v := os.Getenv(EnvAgentSyncInterval); v != "" {
		c.SyncInterval = v
	}
}

func (c *AgentConfig) validate() error {
	if _, err := time.ParseDuration(c.SyncInterval); err != nil {
		return fmt.Errorf("invalid sync_interval: %w", err)
	}
	return nil
}
