package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name: "valid configuration",
			config: Config{
				Server: ServerConfig{
					Port:            8724,
					BindAddress:     "127.0.0.1",
					MaxRequestBytes: 4096,
				},
				Store: StoreConfig{
					Root:       "./assets",
					Capability: "granted",
				},
				Monitor: MonitorConfig{
					Enabled: true,
					Port:    9090,
					Address: "127.0.0.1",
				},
				Logging: LoggingConfig{
					Level:  "info",
					Format: "text",
				},
			},
		},
		{
			name: "port zero allowed for ephemeral binds",
			config: Config{
				Server:  ServerConfig{Port: 0, BindAddress: "127.0.0.1", MaxRequestBytes: 4096},
				Store:   StoreConfig{Root: "./assets", Capability: "limited"},
				Logging: LoggingConfig{Level: "debug", Format: "json"},
			},
		},
		{
			name: "negative port",
			config: Config{
				Server:  ServerConfig{Port: -1, BindAddress: "127.0.0.1", MaxRequestBytes: 4096},
				Store:   StoreConfig{Root: "./assets", Capability: "granted"},
				Logging: LoggingConfig{Level: "info", Format: "text"},
			},
			expectError: true,
		},
		{
			name: "empty bind address",
			config: Config{
				Server:  ServerConfig{Port: 8724, MaxRequestBytes: 4096},
				Store:   StoreConfig{Root: "./assets", Capability: "granted"},
				Logging: LoggingConfig{Level: "info", Format: "text"},
			},
			expectError: true,
		},
		{
			name: "request bound too small",
			config: Config{
				Server:  ServerConfig{Port: 8724, BindAddress: "127.0.0.1", MaxRequestBytes: 16},
				Store:   StoreConfig{Root: "./assets", Capability: "granted"},
				Logging: LoggingConfig{Level: "info", Format: "text"},
			},
			expectError: true,
		},
		{
			name: "unknown capability",
			config: Config{
				Server:  ServerConfig{Port: 8724, BindAddress: "127.0.0.1", MaxRequestBytes: 4096},
				Store:   StoreConfig{Root: "./assets", Capability: "everything"},
				Logging: LoggingConfig{Level: "info", Format: "text"},
			},
			expectError: true,
		},
		{
			name: "empty store root",
			config: Config{
				Server:  ServerConfig{Port: 8724, BindAddress: "127.0.0.1", MaxRequestBytes: 4096},
				Store:   StoreConfig{Capability: "granted"},
				Logging: LoggingConfig{Level: "info", Format: "text"},
			},
			expectError: true,
		},
		{
			name: "monitor enabled without address",
			config: Config{
				Server:  ServerConfig{Port: 8724, BindAddress: "127.0.0.1", MaxRequestBytes: 4096},
				Store:   StoreConfig{Root: "./assets", Capability: "granted"},
				Monitor: MonitorConfig{Enabled: true, Port: 9090},
				Logging: LoggingConfig{Level: "info", Format: "text"},
			},
			expectError: true,
		},
		{
			name: "invalid log level",
			config: Config{
				Server:  ServerConfig{Port: 8724, BindAddress: "127.0.0.1", MaxRequestBytes: 4096},
				Store:   StoreConfig{Root: "./assets", Capability: "granted"},
				Logging: LoggingConfig{Level: "verbose", Format: "text"},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError && err == nil {
				t.Error("expected validation error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
server:
  port: 8724
  max_request_bytes: 8192
  read_timeout: 5
store:
  root: ./assets
  capability: limited
monitor:
  enabled: true
  port: 9724
  address: 127.0.0.1
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8724 {
		t.Errorf("Port = %d, want 8724", cfg.Server.Port)
	}
	if cfg.Server.BindAddress != "127.0.0.1" {
		t.Errorf("BindAddress default = %q, want 127.0.0.1", cfg.Server.BindAddress)
	}
	if cfg.Server.GetReadTimeout() != 5*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 5s", cfg.Server.GetReadTimeout())
	}
	if cfg.Store.Capability != "limited" {
		t.Errorf("Capability = %q, want limited", cfg.Store.Capability)
	}
	if !cfg.Monitor.Enabled {
		t.Error("Monitor.Enabled = false, want true")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/no/such/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8724
store:
  root: ./assets
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.MaxRequestBytes != 4096 {
		t.Errorf("MaxRequestBytes default = %d, want 4096", cfg.Server.MaxRequestBytes)
	}
	if cfg.Store.Capability != "granted" {
		t.Errorf("Capability default = %q, want granted", cfg.Store.Capability)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("logging defaults = %q/%q, want info/text", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Server.GetReadTimeout() != 0 {
		t.Errorf("read timeout should default to disabled, got %v", cfg.Server.GetReadTimeout())
	}
}
