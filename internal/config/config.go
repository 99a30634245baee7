// ABOUTME: Configuration loading and parsing for news-mcp
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Defaults applied by Load when the file leaves a value unset.
const (
	DefaultHTTPAddr          = "localhost:3000"
	DefaultNewsTimeout       = 10 * time.Second
	DefaultCacheTTL          = 5 * time.Minute
	DefaultMaxHeadlines      = 5
	DefaultUserAgent         = "news-mcp/1.0"
	DefaultKeepAliveInterval = 30 * time.Second
	DefaultMetricsPath       = "/metrics"
	DefaultPhoneNumber       = "919901470297"
)

// reservedPaths are mounted by the server itself and cannot host metrics.
var reservedPaths = []string{
	"/",
	"/health",
	"/mcp", "/api/mcp", "/api/mcp-v2",
	"/mcp/sse", "/api/mcp-sse",
	"/api/index", "/api/mcp-debug",
	"/validate", "/api/validate",
	"/getNews", "/api/getNews",
}

// BearerTokenEnv is consulted when auth.bearer_token is left empty.
const BearerTokenEnv = "MCP_BEARER_TOKEN"

// Config represents the complete news-mcp configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	News      NewsConfig      `yaml:"news" toml:"news"`
	SSE       SSEConfig       `yaml:"sse" toml:"sse"`
	CORS      CORSConfig      `yaml:"cors" toml:"cors"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr      string `yaml:"http_addr" toml:"http_addr"`
	DebugEndpoint bool   `yaml:"debug_endpoint" toml:"debug_endpoint"` // expose /api/mcp-debug
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	Funnel    bool   `yaml:"funnel" toml:"funnel"` // Enable public Funnel (implies HTTPS)
}

// AuthConfig holds the shared bearer secret and the identity it unlocks
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token" toml:"bearer_token"`
	PhoneNumber string `yaml:"phone_number" toml:"phone_number"`
}

// SourceConfig describes one headline source
type SourceConfig struct {
	Name     string `yaml:"name" toml:"name"`
	URL      string `yaml:"url" toml:"url"`
	Selector string `yaml:"selector" toml:"selector"`
}

// NewsConfig holds headline fetching configuration
type NewsConfig struct {
	Timeout      time.Duration  `yaml:"-" toml:"-"`
	CacheTTL     time.Duration  `yaml:"-" toml:"-"`
	MaxHeadlines int            `yaml:"max_headlines" toml:"max_headlines"`
	UserAgent    string         `yaml:"user_agent" toml:"user_agent"`
	Sources      []SourceConfig `yaml:"sources" toml:"sources"`

	// Raw string values for unmarshaling
	TimeoutRaw  string `yaml:"timeout" toml:"timeout"`
	CacheTTLRaw string `yaml:"cache_ttl" toml:"cache_ttl"`
}

// SSEConfig holds server-sent events binding configuration
type SSEConfig struct {
	KeepAliveInterval    time.Duration `yaml:"-" toml:"-"`
	KeepAliveIntervalRaw string        `yaml:"keepalive_interval" toml:"keepalive_interval"`
}

// CORSConfig holds cross-origin configuration for the HTTP bindings
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

// DatabaseConfig holds call log database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"` // empty disables the call log
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// DefaultSources are the headline sources used when the config lists none.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{Name: "BBC", URL: "https://www.bbc.com/news", Selector: "h3"},
		{Name: "CNN", URL: "https://edition.cnn.com/world", Selector: "h3"},
		{Name: "NDTV", URL: "https://www.ndtv.com/latest", Selector: ".newsHdng a"},
		{Name: "The Hindu", URL: "https://www.thehindu.com/news/", Selector: "h3"},
		{Name: "Reuters", URL: "https://www.reuters.com/world/", Selector: "h3"},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills unset fields. Durations set explicitly to zero are kept
// (cache_ttl: "0s" disables the headline cache).
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" && !c.Tailscale.Enabled {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Auth.BearerToken == "" {
		c.Auth.BearerToken = os.Getenv(BearerTokenEnv)
	}
	if c.Auth.PhoneNumber == "" {
		c.Auth.PhoneNumber = DefaultPhoneNumber
	}
	if c.News.TimeoutRaw == "" {
		c.News.Timeout = DefaultNewsTimeout
	}
	if c.News.CacheTTLRaw == "" {
		c.News.CacheTTL = DefaultCacheTTL
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = DefaultMaxHeadlines
	}
	if c.News.UserAgent == "" {
		c.News.UserAgent = DefaultUserAgent
	}
	if len(c.News.Sources) == 0 {
		c.News.Sources = DefaultSources()
	}
	if c.SSE.KeepAliveIntervalRaw == "" {
		c.SSE.KeepAliveInterval = DefaultKeepAliveInterval
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Auth.PhoneNumber == "" {
		return fmt.Errorf("auth.phone_number is required")
	}

	if c.News.MaxHeadlines < 0 {
		return fmt.Errorf("news.max_headlines must not be negative")
	}
	if c.News.Timeout <= 0 {
		return fmt.Errorf("news.timeout must be positive")
	}
	if c.News.CacheTTL < 0 {
		return fmt.Errorf("news.cache_ttl must not be negative")
	}

	seen := make(map[string]bool, len(c.News.Sources))
	for i, src := range c.News.Sources {
		if src.Name == "" {
			return fmt.Errorf("news.sources[%d].name is required", i)
		}
		if seen[src.Name] {
			return fmt.Errorf("news.sources[%d]: duplicate source name %q", i, src.Name)
		}
		seen[src.Name] = true
		if src.URL == "" {
			return fmt.Errorf("news.sources[%d].url is required", i)
		}
		if src.Selector == "" {
			return fmt.Errorf("news.sources[%d].selector is required", i)
		}
	}

	if c.SSE.KeepAliveInterval <= 0 {
		return fmt.Errorf("sse.keepalive_interval must be positive")
	}

	if c.Metrics.Enabled {
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with /")
		}
		if slices.Contains(reservedPaths, c.Metrics.Path) {
			return fmt.Errorf("metrics.path %q collides with a built-in route", c.Metrics.Path)
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.News.TimeoutRaw != "" {
		cfg.News.Timeout, err = time.ParseDuration(cfg.News.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing news.timeout %q: %w", cfg.News.TimeoutRaw, err)
		}
	}

	if cfg.News.CacheTTLRaw != "" {
		cfg.News.CacheTTL, err = time.ParseDuration(cfg.News.CacheTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing news.cache_ttl %q: %w", cfg.News.CacheTTLRaw, err)
		}
	}

	if cfg.SSE.KeepAliveIntervalRaw != "" {
		cfg.SSE.KeepAliveInterval, err = time.ParseDuration(cfg.SSE.KeepAliveIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing sse.keepalive_interval %q: %w", cfg.SSE.KeepAliveIntervalRaw, err)
		}
	}

	return nil
}
