// Package config loads the dispatcher's single process-wide configuration
// object from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the dispatcher's process-wide configuration, covering every
// field listed in the external interfaces section plus the ambient fields
// (ResultQueueHighWater, LogJSON) a production deployment needs.
type Config struct {
	DispatcherAddress string        `yaml:"dispatcher_address"`
	ClientPort        int           `yaml:"client_port"`
	CollectorPort     int           `yaml:"collector_port"`
	DBPath            string        `yaml:"db_path"`
	UserDBPath        string        `yaml:"user_db_path"`
	SourcesPath       string        `yaml:"sources_path"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	HeartbeatTimeout  time.Duration `yaml:"heartbeat_timeout"`
	SweeperInterval   time.Duration `yaml:"sweeper_interval"`
	StreamPollInterval time.Duration `yaml:"stream_poll_interval"`
	LogFile           string        `yaml:"log_file"`
	LogLevel          string        `yaml:"log_level"`
	LogJSON           bool          `yaml:"log_json"`
	MaxWorkers        int           `yaml:"max_workers"`

	// ResultQueueHighWater bounds the per-task Result Bus queue depth; a
	// push past this count drops the oldest queued envelope.
	ResultQueueHighWater int `yaml:"result_queue_high_water"`

	// MetricsAddress, when non-empty, serves the Prometheus /metrics
	// endpoint on this address.
	MetricsAddress string `yaml:"metrics_address"`
}

// Default returns a Config populated with the defaults named throughout the
// component design (5s sweeper interval, 5s stream poll interval, 1000-entry
// result queue high-water mark).
func Default() Config {
	return Config{
		DispatcherAddress:  "0.0.0.0",
		ClientPort:         8443,
		CollectorPort:      8444,
		DBPath:             "fenwick-tasks.db",
		UserDBPath:         "fenwick-users.db",
		SourcesPath:        "sources.json",
		HeartbeatInterval:  10 * time.Second,
		HeartbeatTimeout:   30 * time.Second,
		SweeperInterval:    5 * time.Second,
		StreamPollInterval: 5 * time.Second,
		LogLevel:           "info",
		MaxWorkers:         100,
		ResultQueueHighWater: 1000,
		MetricsAddress:     ":9090",
	}
}

// Load reads and parses a YAML config file, filling any field the file
// omits with the value from Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ClientAddress returns the listen address for the client-facing service.
func (c Config) ClientAddress() string {
	return fmt.Sprintf("%s:%d", c.DispatcherAddress, c.ClientPort)
}

// CollectorAddress returns the listen address for the worker-facing service.
func (c Config) CollectorAddress() string {
	return fmt.Sprintf("%s:%d", c.DispatcherAddress, c.CollectorPort)
}

// Validate checks the invariants startup depends on: positive ports,
// non-empty paths, sane intervals.
func (c Config) Validate() error {
	if c.ClientPort <= 0 || c.ClientPort > 65535 {
		return fmt.Errorf("client_port out of range: %d", c.ClientPort)
	}
	if c.CollectorPort <= 0 || c.CollectorPort > 65535 {
		return fmt.Errorf("collector_port out of range: %d", c.CollectorPort)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.UserDBPath == "" {
		return fmt.Errorf("user_db_path must not be empty")
	}
	if c.HeartbeatTimeout <= 0 {
		return fmt.Errorf("heartbeat_timeout must be positive")
	}
	if c.SweeperInterval <= 0 {
		return fmt.Errorf("sweeper_interval must be positive")
	}
	if c.ResultQueueHighWater <= 0 {
		return fmt.Errorf("result_queue_high_water must be positive")
	}
	return nil
}
