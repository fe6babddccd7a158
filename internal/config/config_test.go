package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/hyper/pkg/server"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.WebSocketPath != "/ws" {
		t.Errorf("Server.WebSocketPath = %q, want /ws", cfg.Server.WebSocketPath)
	}
	if cfg.App.Demo != DefaultDemo {
		t.Errorf("App.Demo = %q, want %q", cfg.App.Demo, DefaultDemo)
	}
	if cfg.Session.Heartbeat != 30*time.Second {
		t.Errorf("Session.Heartbeat = %v, want 30s", cfg.Session.Heartbeat)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func write(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	if !IsNotFound(err) {
		t.Fatalf("Load(empty dir) error = %v, want not found", err)
	}
	if Exists(dir) {
		t.Error("Exists() = true before the file is written")
	}

	write(t, dir, `
server:
  host: 127.0.0.1
  port: 9090
  maxSessions: 10
session:
  heartbeat: 5s
  idleTimeout: 2m
  maxEventQueue: 16
app:
  demo: todo
log:
  level: debug
  format: json
`)
	if !Exists(dir) {
		t.Error("Exists() = false after the file is written")
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Address", cfg.Address(), "127.0.0.1:9090"},
		{"MaxSessions", cfg.Server.MaxSessions, 10},
		{"Heartbeat", cfg.Session.Heartbeat, 5 * time.Second},
		{"IdleTimeout", cfg.Session.IdleTimeout, 2 * time.Minute},
		{"MaxEventQueue", cfg.Session.MaxEventQueue, 16},
		{"ReadTimeout default", cfg.Session.ReadTimeout, 60 * time.Second},
		{"WebSocketPath default", cfg.Server.WebSocketPath, "/ws"},
		{"Demo", cfg.App.Demo, "todo"},
		{"Log.Format", cfg.Log.Format, "json"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "server: [", "E120"},
		{"unknown key", "server:\n  prot: 80\n", "E120"},
		{"bad duration", "session:\n  heartbeat: soon\n", "E120"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(write(t, t.TempDir(), tt.content))
			if err == nil || !strings.HasPrefix(err.Error(), tt.want) {
				t.Errorf("LoadFile() error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := LoadFile(write(t, t.TempDir(), ""))
	if err != nil {
		t.Fatalf("LoadFile(empty) error = %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want default", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "E122"},
		{"negative sessions", func(c *Config) { c.Server.MaxSessions = -1 }, "E123"},
		{"negative timeout", func(c *Config) { c.Session.WriteTimeout = -time.Second }, "E123"},
		{"relative ws path", func(c *Config) { c.Server.WebSocketPath = "ws" }, "E120"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "E121"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "E121"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.HasPrefix(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := New()
	cfg.App.Demo = "ticker"
	cfg.Session.IdleTimeout = 90 * time.Second

	if err := cfg.Save(); err == nil {
		t.Error("Save() without a path should fail")
	}
	if err := cfg.SaveTo(filepath.Join(dir, ConfigFileName)); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.App.Demo != "ticker" || loaded.Session.IdleTimeout != 90*time.Second {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestRuntime(t *testing.T) {
	cfg := New()
	cfg.Server.Port = 9000
	cfg.Server.MetricsPath = "-"
	cfg.Session.MaxEventQueue = 8

	sc := cfg.Runtime()
	if sc.Address != ":9000" {
		t.Errorf("Address = %q, want :9000", sc.Address)
	}
	if sc.MetricsPath != "" {
		t.Errorf("MetricsPath = %q, want disabled", sc.MetricsPath)
	}
	if sc.SessionConfig.MaxEventQueue != 8 {
		t.Errorf("MaxEventQueue = %d, want 8", sc.SessionConfig.MaxEventQueue)
	}
	if sc.SessionConfig.WriteTimeout != server.DefaultSessionConfig().WriteTimeout {
		t.Errorf("WriteTimeout = %v, want default", sc.SessionConfig.WriteTimeout)
	}
}

func TestNewLogger(t *testing.T) {
	var b bytes.Buffer
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	logger := cfg.NewLogger(&b)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	out := b.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("json output = %s", out)
	}
}
