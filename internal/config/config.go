package config

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/vango-dev/eventmanager/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "eventmanager.json"

	// DefaultPort is the default inspect server port.
	DefaultPort = 7070

	// DefaultHost is the default inspect server host.
	DefaultHost = "localhost"

	// DefaultPrefix is the URL prefix of the inspect routes.
	DefaultPrefix = "/debug"

	// DefaultBridgePath is the WebSocket endpoint path.
	DefaultBridgePath = "/ws"

	// DefaultWriteTimeout is the bridge frame write deadline.
	DefaultWriteTimeout = "10s"

	// DefaultReadLimit is the maximum inbound bridge message size.
	DefaultReadLimit = 64 * 1024

	// DefaultNamespace is the Prometheus namespace and tracer name.
	DefaultNamespace = "eventmanager"
)

// Config represents eventmanager.json.
type Config struct {
	Log     LogConfig     `json:"log,omitempty"`
	Inspect InspectConfig `json:"inspect,omitempty"`
	Bridge  BridgeConfig  `json:"bridge,omitempty"`
	Metrics MetricsConfig `json:"metrics,omitempty"`
	Tracing TracingConfig `json:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// InspectConfig configures the HTTP debug server.
type InspectConfig struct {
	Host   string `json:"host,omitempty"`
	Port   int    `json:"port,omitempty"`
	Prefix string `json:"prefix,omitempty"`

	// Metrics exposes /metrics under Prefix.
	Metrics *bool `json:"metrics,omitempty"`
}

// BridgeConfig configures the WebSocket bridge.
type BridgeConfig struct {
	Path string `json:"path,omitempty"`

	// WriteTimeout is a Go duration string (e.g. "10s").
	WriteTimeout string `json:"writeTimeout,omitempty"`

	// ReadLimit is the maximum inbound message size in bytes.
	ReadLimit int64 `json:"readLimit,omitempty"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty"`
	Subsystem string `json:"subsystem,omitempty"`
}

// TracingConfig configures OpenTelemetry.
type TracingConfig struct {
	TracerName string `json:"tracerName,omitempty"`
}

// New returns a configuration with defaults.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads eventmanager.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads the configuration from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use defaults")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads eventmanager.json from dir, falling back to New when
// the file does not exist. Parse and validation errors are returned.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.HasCode(err, "E141") {
		return New(), nil
	}
	return cfg, err
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Inspect.Host == "" {
		c.Inspect.Host = DefaultHost
	}
	if c.Inspect.Port == 0 {
		c.Inspect.Port = DefaultPort
	}
	if c.Inspect.Prefix == "" {
		c.Inspect.Prefix = DefaultPrefix
	}
	if c.Inspect.Metrics == nil {
		enabled := true
		c.Inspect.Metrics = &enabled
	}

	if c.Bridge.Path == "" {
		c.Bridge.Path = DefaultBridgePath
	}
	if c.Bridge.WriteTimeout == "" {
		c.Bridge.WriteTimeout = DefaultWriteTimeout
	}
	if c.Bridge.ReadLimit == 0 {
		c.Bridge.ReadLimit = DefaultReadLimit
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := parseLevel(c.Log.Level); !ok {
		return invalidValue("log.level", c.Log.Level, "debug, info, warn, error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalidValue("log.format", c.Log.Format, "text, json")
	}
	if c.Inspect.Port < 0 || c.Inspect.Port > 65535 {
		return errors.New("E121").
			WithDetail("inspect.port must be between 0 and 65535")
	}
	if !strings.HasPrefix(c.Inspect.Prefix, "/") {
		return errors.New("E121").
			WithDetail("inspect.prefix must start with /")
	}
	if !strings.HasPrefix(c.Bridge.Path, "/") {
		return errors.New("E121").
			WithDetail("bridge.path must start with /")
	}
	if d, err := time.ParseDuration(c.Bridge.WriteTimeout); err != nil || d <= 0 {
		return errors.New("E121").
			WithDetail(fmt.Sprintf("bridge.writeTimeout %q is not a positive duration", c.Bridge.WriteTimeout)).
			WithSuggestion(`Use a Go duration such as "10s"`)
	}
	if c.Bridge.ReadLimit < 0 {
		return errors.New("E121").
			WithDetail("bridge.readLimit must not be negative")
	}
	return nil
}

func invalidValue(field, value, allowed string) error {
	return errors.New("E121").
		WithDetail(fmt.Sprintf("%s %q is not one of %s", field, value, allowed))
}

// Address returns the inspect server listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Inspect.Host, strconv.Itoa(c.Inspect.Port))
}

// MetricsEnabled reports whether /metrics is served.
func (c *Config) MetricsEnabled() bool {
	return c.Inspect.Metrics == nil || *c.Inspect.Metrics
}

// WriteTimeout returns the parsed bridge write timeout.
func (c *Config) WriteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Bridge.WriteTimeout)
	if err != nil {
		d, _ = time.ParseDuration(DefaultWriteTimeout)
	}
	return d
}

// Logger builds a slog.Logger writing to w with the configured level and
// format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
