package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Twitter TwitterConfig `yaml:"twitter"`
	Resolve ResolveConfig `yaml:"resolve"`
	Worker  WorkerConfig  `yaml:"worker"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"9848"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"2m"`
}

// TwitterConfig holds upstream API endpoints, credentials and retry tuning.
type TwitterConfig struct {
	BearerToken    string `yaml:"bearer_token" envconfig:"TWITTER_BEARER_TOKEN"`
	GraphQLURL     string `yaml:"graphql_url" envconfig:"TWITTER_GRAPHQL_URL" default:"https://api.x.com/graphql/I9GDzyCGZL2wSoYFFrrTVw/TweetResultByRestId"`
	GuestTokenURL  string `yaml:"guest_token_url" envconfig:"TWITTER_GUEST_TOKEN_URL" default:"https://api.x.com/1.1/guest/activate.json"`
	SyndicationURL string `yaml:"syndication_url" envconfig:"TWITTER_SYNDICATION_URL" default:"https://cdn.syndication.twimg.com/tweet-result"`
	UserAgent      string `yaml:"user_agent" envconfig:"TWITTER_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`

	// Cookie is an optional logged-in session ("auth_token=...; ct0=...") used for age-restricted posts.
	Cookie   string `yaml:"cookie" envconfig:"TWITTER_COOKIE"`
	ProxyURL string `yaml:"proxy_url" envconfig:"TWITTER_PROXY"`

	RequestTimeout     time.Duration `yaml:"request_timeout" envconfig:"TWITTER_REQUEST_TIMEOUT" default:"20s"`
	TokenTimeout       time.Duration `yaml:"token_timeout" envconfig:"TWITTER_TOKEN_TIMEOUT" default:"10s"`
	SyndicationTimeout time.Duration `yaml:"syndication_timeout" envconfig:"TWITTER_SYNDICATION_TIMEOUT" default:"15s"`
	ProbeTimeout       time.Duration `yaml:"probe_timeout" envconfig:"TWITTER_PROBE_TIMEOUT" default:"5s"`
	GuestTokenTTL      time.Duration `yaml:"guest_token_ttl" envconfig:"TWITTER_GUEST_TOKEN_TTL" default:"1h"`

	TokenRetries         int           `yaml:"token_retries" envconfig:"TWITTER_TOKEN_RETRIES" default:"3"`
	TokenRetryDelay      time.Duration `yaml:"token_retry_delay" envconfig:"TWITTER_TOKEN_RETRY_DELAY" default:"1s"`
	TokenRetryMultiplier float64       `yaml:"token_retry_multiplier" envconfig:"TWITTER_TOKEN_RETRY_MULTIPLIER" default:"2"`

	APIRetries    int           `yaml:"api_retries" envconfig:"TWITTER_API_RETRIES" default:"3"`
	APIRetryDelay time.Duration `yaml:"api_retry_delay" envconfig:"TWITTER_API_RETRY_DELAY" default:"500ms"`

	SyndicationRetries    int           `yaml:"syndication_retries" envconfig:"TWITTER_SYNDICATION_RETRIES" default:"3"`
	SyndicationRetryDelay time.Duration `yaml:"syndication_retry_delay" envconfig:"TWITTER_SYNDICATION_RETRY_DELAY" default:"1s"`
	SyndicationBackoff    float64       `yaml:"syndication_backoff" envconfig:"TWITTER_SYNDICATION_BACKOFF" default:"2"`
}

// ResolveConfig holds resolution defaults.
type ResolveConfig struct {
	DefaultQuality string `yaml:"default_quality" envconfig:"RESOLVE_DEFAULT_QUALITY" default:"best"`
	AlwaysProxy    bool   `yaml:"always_proxy" envconfig:"RESOLVE_ALWAYS_PROXY" default:"false"`
	MaxBatchSize   int    `yaml:"max_batch_size" envconfig:"RESOLVE_MAX_BATCH_SIZE" default:"50"`
}

// WorkerConfig holds batch worker pool configuration.
type WorkerConfig struct {
	Count        int           `yaml:"count" envconfig:"WORKER_COUNT" default:"4"`
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"WORKER_POLL_INTERVAL" default:"500ms"`
	MaxRetries   int           `yaml:"max_retries" envconfig:"WORKER_MAX_RETRIES" default:"2"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values, which override defaults.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Environment and tag defaults
	env := &Config{}
	if err := envconfig.Process("", env); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	mergeEnv(reflect.ValueOf(cfg).Elem(), reflect.ValueOf(env).Elem())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// mergeEnv copies a field from env into dst when its variable is set or
// the file left it empty.
func mergeEnv(dst, env reflect.Value) {
	for i := 0; i < dst.NumField(); i++ {
		field := dst.Type().Field(i)
		if field.Type.Kind() == reflect.Struct {
			mergeEnv(dst.Field(i), env.Field(i))
			continue
		}
		_, set := os.LookupEnv(field.Tag.Get("envconfig"))
		if set || dst.Field(i).IsZero() {
			dst.Field(i).Set(env.Field(i))
		}
	}
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 0 and 65535")
	}
	if err := c.Twitter.Validate(); err != nil {
		return err
	}
	if c.Resolve.DefaultQuality == "" {
		return fmt.Errorf("RESOLVE_DEFAULT_QUALITY is required")
	}
	if c.Resolve.MaxBatchSize <= 0 {
		return fmt.Errorf("RESOLVE_MAX_BATCH_SIZE must be positive")
	}
	if c.Worker.Count <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	return nil
}

// Validate checks the upstream settings.
func (c *TwitterConfig) Validate() error {
	for name, raw := range map[string]string{
		"TWITTER_GRAPHQL_URL":     c.GraphQLURL,
		"TWITTER_GUEST_TOKEN_URL": c.GuestTokenURL,
		"TWITTER_SYNDICATION_URL": c.SyndicationURL,
	} {
		if raw == "" {
			return fmt.Errorf("%s is required", name)
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("%s is not a valid URL: %w", name, err)
		}
	}
	if c.ProxyURL != "" {
		u, err := url.Parse(c.ProxyURL)
		if err != nil {
			return fmt.Errorf("TWITTER_PROXY is not a valid URL: %w", err)
		}
		switch u.Scheme {
		case "http", "https", "socks5":
		default:
			return fmt.Errorf("TWITTER_PROXY scheme %q is not supported", u.Scheme)
		}
	}
	if c.TokenRetries <= 0 || c.APIRetries <= 0 || c.SyndicationRetries <= 0 {
		return fmt.Errorf("twitter retry counts must be positive")
	}
	if c.TokenRetryMultiplier < 1 || c.SyndicationBackoff < 1 {
		return fmt.Errorf("twitter backoff multipliers must be >= 1")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
