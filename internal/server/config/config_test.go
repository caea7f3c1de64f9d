package config

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 6379 {
		t.Errorf("port = %d, want 6379", cfg.Server.Port)
	}
	if cfg.Server.Backlog != 512 {
		t.Errorf("backlog = %d, want 512", cfg.Server.Backlog)
	}
	if cfg.Arena.SizeBytes != 64<<20 {
		t.Errorf("arena size = %d, want 64MiB", cfg.Arena.SizeBytes)
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("default configuration does not verify: %v", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr bool
	}{
		{
			name:   "defaults",
			mutate: func(c *ServerConfig) {},
		},
		{
			name:   "ephemeral port",
			mutate: func(c *ServerConfig) { c.Server.Port = 0 },
		},
		{
			name:   "loopback bind",
			mutate: func(c *ServerConfig) { c.Server.Bind = "127.0.0.1" },
		},
		{
			name:    "port out of range",
			mutate:  func(c *ServerConfig) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "negative port",
			mutate:  func(c *ServerConfig) { c.Server.Port = -1 },
			wantErr: true,
		},
		{
			name:    "hostname bind",
			mutate:  func(c *ServerConfig) { c.Server.Bind = "localhost" },
			wantErr: true,
		},
		{
			name:    "ipv6 bind",
			mutate:  func(c *ServerConfig) { c.Server.Bind = "::1" },
			wantErr: true,
		},
		{
			name:    "zero backlog",
			mutate:  func(c *ServerConfig) { c.Server.Backlog = 0 },
			wantErr: true,
		},
		{
			name:    "negative accept rate",
			mutate:  func(c *ServerConfig) { c.Server.AcceptRate = -5 },
			wantErr: true,
		},
		{
			name:    "zero arena",
			mutate:  func(c *ServerConfig) { c.Arena.SizeBytes = 0 },
			wantErr: true,
		},
		{
			name:    "metrics enabled without addr",
			mutate:  func(c *ServerConfig) { c.Metrics.Enabled = true; c.Metrics.Addr = "" },
			wantErr: true,
		},
		{
			name:    "bogus log level",
			mutate:  func(c *ServerConfig) { c.Log.Level = "loud" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
