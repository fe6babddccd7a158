package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/hyper/internal/errors"
	"github.com/vango-dev/hyper/pkg/server"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "hyper.yaml"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default bind host. Empty binds every interface.
	DefaultHost = ""

	// DefaultDemo is the demo app served when none is configured.
	DefaultDemo = "counter"
)

// Config represents the complete hyper.yaml configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	App     AppConfig     `yaml:"app"`
	Log     LogConfig     `yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP and WebSocket settings.
type ServerConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	WebSocketPath string `yaml:"websocketPath"`

	// MetricsPath serves Prometheus metrics. "-" disables the endpoint.
	MetricsPath string `yaml:"metricsPath"`

	// MaxSessions limits concurrent sessions. 0 means no limit.
	MaxSessions int `yaml:"maxSessions"`

	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	TrustProxy bool `yaml:"trustProxy"`
}

// SessionConfig contains per-session limits. Durations use Go syntax
// ("30s", "5m").
type SessionConfig struct {
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	Heartbeat      time.Duration `yaml:"heartbeat"`
	IdleTimeout    time.Duration `yaml:"idleTimeout"`
	MaxMessageSize int64         `yaml:"maxMessageSize"`
	MaxEventQueue  int           `yaml:"maxEventQueue"`
}

// AppConfig selects the app every session runs.
type AppConfig struct {
	Demo string `yaml:"demo"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads hyper.yaml from the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. Unknown keys
// are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or pass --config").
				Wrap(err)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check the YAML syntax and key names")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// IsNotFound reports whether err is the missing-file error from Load.
func IsNotFound(err error) bool {
	var he *errors.HyperError
	return stderrors.As(err, &he) && he.Code == "E141"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := server.DefaultSessionConfig()

	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.WebSocketPath == "" {
		c.Server.WebSocketPath = "/ws"
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = "/metrics"
	}

	if c.Session.ReadTimeout == 0 {
		c.Session.ReadTimeout = d.ReadTimeout
	}
	if c.Session.WriteTimeout == 0 {
		c.Session.WriteTimeout = d.WriteTimeout
	}
	if c.Session.Heartbeat == 0 {
		c.Session.Heartbeat = d.HeartbeatInterval
	}
	if c.Session.IdleTimeout == 0 {
		c.Session.IdleTimeout = d.IdleTimeout
	}
	if c.Session.MaxMessageSize == 0 {
		c.Session.MaxMessageSize = d.MaxMessageSize
	}
	if c.Session.MaxEventQueue == 0 {
		c.Session.MaxEventQueue = d.MaxEventQueue
	}

	if c.App.Demo == "" {
		c.App.Demo = DefaultDemo
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail(fmt.Sprintf("server.port is %d", c.Server.Port))
	}
	if !strings.HasPrefix(c.Server.WebSocketPath, "/") {
		return errors.New("E120").
			WithDetail("server.websocketPath must start with /")
	}

	s := c.Session
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.Heartbeat < 0 || s.IdleTimeout < 0 ||
		s.MaxMessageSize < 0 || s.MaxEventQueue < 0 || c.Server.MaxSessions < 0 {
		return errors.New("E123")
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.New("E121").Wrap(err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E121").
			WithDetail(fmt.Sprintf("log.format %q is not text or json", c.Log.Format))
	}
	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Runtime converts the file configuration to a server configuration.
func (c *Config) Runtime() *server.Config {
	sc := server.DefaultConfig()
	sc.Address = c.Address()
	sc.WebSocketPath = c.Server.WebSocketPath
	sc.MetricsPath = c.Server.MetricsPath
	if sc.MetricsPath == "-" {
		sc.MetricsPath = ""
	}
	sc.MaxSessions = c.Server.MaxSessions
	sc.TrustProxy = c.Server.TrustProxy

	sc.SessionConfig.ReadTimeout = c.Session.ReadTimeout
	sc.SessionConfig.WriteTimeout = c.Session.WriteTimeout
	sc.SessionConfig.HeartbeatInterval = c.Session.Heartbeat
	sc.SessionConfig.IdleTimeout = c.Session.IdleTimeout
	sc.SessionConfig.MaxMessageSize = c.Session.MaxMessageSize
	sc.SessionConfig.MaxEventQueue = c.Session.MaxEventQueue
	return sc
}

// NewLogger builds the process logger described by Log.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
