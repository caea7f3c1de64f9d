package config

import (
	"errors"
	"fmt"
	"net"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	if cfg.Server.Bind != "" {
		ip := net.ParseIP(cfg.Server.Bind)
		if ip == nil || ip.To4() == nil {
			return fmt.Errorf("server.bind %q is not an IPv4 address", cfg.Server.Bind)
		}
	}
	if cfg.Server.Backlog < 1 {
		return errors.New("server.backlog must be at least 1")
	}
	if cfg.Server.AcceptRate < 0 {
		return errors.New("server.accept_rate must not be negative")
	}

	if cfg.Arena.SizeBytes < 1 {
		return errors.New("arena.size_bytes must be at least 1")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		return errors.New("metrics.addr is required when metrics are enabled")
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not a known level", cfg.Log.Level)
	}

	return nil
}
