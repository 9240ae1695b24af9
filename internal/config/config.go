package config

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/toolhub/ynabhub/internal/core"
	"github.com/toolhub/ynabhub/internal/db"
	"github.com/toolhub/ynabhub/internal/events"
	"github.com/toolhub/ynabhub/internal/tools"
	"github.com/toolhub/ynabhub/internal/ynab"
)

// Config is the resolved process configuration. Precedence, highest first:
// environment, config file, profile defaults, built-in defaults.
type Config struct {
	YNABToken   string
	YNABBaseURL string
	HTTPTimeout time.Duration

	Profile string

	HTTPListen string
	MCPListen  string
	MCPStdio   bool

	ToolAllowlist string
	ReadOnly      bool

	LogLevel  string
	LogFormat string

	DatabaseURL string

	AMQPURL      string
	AMQPExchange string

	OTLPEndpoint   string
	OTelSampleRate float64
}

// envBindings maps config keys to the environment variables they read.
var envBindings = map[string]string{
	"ynab_api_token":    "YNAB_API_TOKEN",
	"ynab_base_url":     "YNAB_BASE_URL",
	"ynab_http_timeout": "YNAB_HTTP_TIMEOUT",
	"profile":           "YNABHUB_PROFILE",
	"http_listen":       "YNABHUB_HTTP_LISTEN",
	"mcp_listen":        "YNABHUB_MCP_LISTEN",
	"mcp_stdio":         "YNABHUB_MCP_STDIO",
	"tool_allowlist":    "TOOL_ALLOWLIST",
	"read_only":         "YNABHUB_READ_ONLY",
	"log_level":         "LOG_LEVEL",
	"log_format":        "LOG_FORMAT",
	"database_url":      "DATABASE_URL",
	"amqp_url":          "AMQP_URL",
	"amqp_exchange":     "AMQP_EXCHANGE",
	"otel_endpoint":     "OTEL_EXPORTER_OTLP_ENDPOINT",
	"otel_sample_rate":  "OTEL_SAMPLE_RATE",
}

// EnvVars lists every environment variable Load reads, sorted.
func EnvVars() []string {
	out := make([]string, 0, len(envBindings))
	for _, env := range envBindings {
		out = append(out, env)
	}
	sort.Strings(out)
	return out
}

// Load resolves the configuration. configFile is optional; any format viper
// understands works, with keys named like the envBindings keys.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	profile, err := core.LoadProfile(v.GetString("profile"))
	if err != nil {
		return nil, err
	}

	v.SetDefault("ynab_base_url", ynab.DefaultBaseURL)
	v.SetDefault("ynab_http_timeout", time.Duration(profile.HTTPTimeoutSeconds)*time.Second)
	v.SetDefault("mcp_stdio", true)
	v.SetDefault("read_only", profile.ReadOnly)
	v.SetDefault("log_level", profile.LogLevel)
	v.SetDefault("log_format", profile.LogFormat)
	v.SetDefault("amqp_exchange", events.DefaultExchange)
	v.SetDefault("otel_sample_rate", 1.0)

	return &Config{
		YNABToken:      strings.TrimSpace(v.GetString("ynab_api_token")),
		YNABBaseURL:    strings.TrimSpace(v.GetString("ynab_base_url")),
		HTTPTimeout:    v.GetDuration("ynab_http_timeout"),
		Profile:        profile.Name,
		HTTPListen:     strings.TrimSpace(v.GetString("http_listen")),
		MCPListen:      strings.TrimSpace(v.GetString("mcp_listen")),
		MCPStdio:       v.GetBool("mcp_stdio"),
		ToolAllowlist:  v.GetString("tool_allowlist"),
		ReadOnly:       v.GetBool("read_only"),
		LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:      strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		DatabaseURL:    strings.TrimSpace(v.GetString("database_url")),
		AMQPURL:        strings.TrimSpace(v.GetString("amqp_url")),
		AMQPExchange:   strings.TrimSpace(v.GetString("amqp_exchange")),
		OTLPEndpoint:   strings.TrimSpace(v.GetString("otel_endpoint")),
		OTelSampleRate: v.GetFloat64("otel_sample_rate"),
	}, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if u, err := url.Parse(c.YNABBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid YNAB base URL '%s': must be an absolute http(s) URL", c.YNABBaseURL))
	}

	if c.HTTPTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at least 1 second", c.HTTPTimeout))
	}

	for name, addr := range map[string]string{"HTTP": c.HTTPListen, "MCP": c.MCPListen} {
		if addr == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s listen address '%s': %v", name, addr, err))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be json or text", c.LogFormat))
	}

	known := make(map[string]bool)
	for _, t := range tools.Definitions() {
		known[t.Name] = true
	}
	for _, name := range strings.Split(c.ToolAllowlist, ",") {
		name = strings.TrimSpace(name)
		if name != "" && !known[name] {
			errors = append(errors, fmt.Sprintf("unknown tool '%s' in TOOL_ALLOWLIST", name))
		}
	}

	if c.DatabaseURL != "" {
		if _, _, err := db.ParseURL(c.DatabaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL: %v", err))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if c.OTelSampleRate < 0 || c.OTelSampleRate > 1 {
		errors = append(errors, fmt.Sprintf("invalid OTEL sample rate %v: must be between 0 and 1", c.OTelSampleRate))
	}

	if len(errors) > 0 {
		sort.Strings(errors)
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
