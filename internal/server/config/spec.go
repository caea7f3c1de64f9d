// Package config defines the tachikv-server configuration structure.
package config

// ServerConfig is the root configuration for tachikv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Arena   ArenaSection   `koanf:"arena"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the listening endpoint and accept policy.
type ServerSection struct {
	// Bind is the listen address; empty or "0.0.0.0" is the wildcard.
	Bind string `koanf:"bind"`

	// Port is the TCP listen port.
	Port int `koanf:"port"`

	// Backlog is the listen queue depth.
	Backlog int `koanf:"backlog"`

	// ReusePort sets SO_REUSEPORT. Run one instance per core with
	// this enabled and the kernel balances connections across them.
	ReusePort bool `koanf:"reuse_port"`

	// AcceptRate caps accepted connections per second (0 disables).
	AcceptRate int `koanf:"accept_rate"`
}

// ArenaSection configures the value arena.
type ArenaSection struct {
	// SizeBytes is the arena capacity. The keyspace stops accepting
	// writes once it is exhausted.
	SizeBytes int `koanf:"size_bytes"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
