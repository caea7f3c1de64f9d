package config

// Default configuration values.
const (
	DefaultBind    = "0.0.0.0"
	DefaultPort    = 6379
	DefaultBacklog = 512

	DefaultArenaSize = 64 << 20

	DefaultMetricsAddr = "127.0.0.1:9105"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Bind:    DefaultBind,
			Port:    DefaultPort,
			Backlog: DefaultBacklog,
		},
		Arena: ArenaSection{
			SizeBytes: DefaultArenaSize,
		},
		Metrics: MetricsSection{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
