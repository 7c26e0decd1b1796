// Package cfg loads the configuration file of the hooky service.
package cfg

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
)

const (
	KVBackendRedis = "redis"
	KVBackendNATS  = "nats"
)

type Config struct {
	HTTPListenAddr            string `toml:"http_server_listen_addr"`
	HTTPSListenAddr           string `toml:"https_server_listen_addr"`
	HTTPSCertFile             string `toml:"https_ssl_cert_file"`
	HTTPSKeyFile              string `toml:"https_ssl_key_file"`
	HTTPGithubWebhookEndpoint string `toml:"github_webhook_endpoint" default:"/"`
	HTTPMetricsEndpoint       string `toml:"metrics_endpoint" default:"/metrics"`

	GithubWebHookSecret     string `toml:"github_webhook_secret"`
	GithubAppID             int64  `toml:"github_app_id"`
	GithubAppPrivateKeyFile string `toml:"github_app_private_key_file"`
	GithubAPIURL            string `toml:"github_api_url" default:"https://api.github.com/"`

	KVBackend    string `toml:"kv_backend" default:"redis"`
	RedisURL     string `toml:"redis_url" default:"redis://localhost:6379"`
	NATSURL      string `toml:"nats_url" default:"nats://localhost:4222"`
	NATSKVBucket string `toml:"nats_kv_bucket" default:"hooky"`

	// ConfigCacheTimeout is the number of seconds repository
	// configurations are cached.
	ConfigCacheTimeout  int64  `toml:"config_cache_timeout" default:"600"`
	OverflowMultiple    int64  `toml:"overflow_multiple" default:"4294967296"`
	MaxConcurrentEvents int    `toml:"max_concurrent_events" default:"16"`
	EventFilter         string `toml:"event_filter"`
	StatusTargetURL     string `toml:"status_target_url" default:"https://github.com/pydantic/hooky#readme"`

	LogFormat  string `toml:"log_format" default:"logfmt"`
	LogTimeKey string `toml:"log_time_key" default:"time_iso8601"`
	LogLevel   string `toml:"log_level" default:"info"`
}

func Load(reader io.Reader) (*Config, error) {
	var result Config

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ConfigCacheTTL returns ConfigCacheTimeout as duration.
func (c *Config) ConfigCacheTTL() time.Duration {
	return time.Duration(c.ConfigCacheTimeout) * time.Second
}

// GithubAppPrivateKey reads the private key file of the GitHub App.
func (c *Config) GithubAppPrivateKey() ([]byte, error) {
	return os.ReadFile(c.GithubAppPrivateKeyFile)
}

// Validate returns an error if a mandatory setting is missing or a setting
// has an invalid value.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPListenAddr == "" && c.HTTPSListenAddr == "" {
		errs = append(errs, errors.New("https_server_listen_addr or http_server_listen_addr must be set"))
	}

	if c.HTTPSListenAddr != "" && (c.HTTPSCertFile == "" || c.HTTPSKeyFile == "") {
		errs = append(errs, errors.New("https_ssl_cert_file and https_ssl_key_file must be set when https_server_listen_addr is set"))
	}

	if c.GithubWebHookSecret == "" {
		errs = append(errs, errors.New("github_webhook_secret must be set"))
	}

	if c.GithubAppID <= 0 {
		errs = append(errs, errors.New("github_app_id must be set to a positive number"))
	}

	if c.GithubAppPrivateKeyFile == "" {
		errs = append(errs, errors.New("github_app_private_key_file must be set"))
	}

	if !strings.HasPrefix(c.HTTPGithubWebhookEndpoint, "/") {
		errs = append(errs, fmt.Errorf("github_webhook_endpoint must start with a slash, got %q", c.HTTPGithubWebhookEndpoint))
	}

	if c.HTTPMetricsEndpoint != "" && !strings.HasPrefix(c.HTTPMetricsEndpoint, "/") {
		errs = append(errs, fmt.Errorf("metrics_endpoint must start with a slash, got %q", c.HTTPMetricsEndpoint))
	}

	if c.HTTPMetricsEndpoint != "" && c.HTTPMetricsEndpoint == c.HTTPGithubWebhookEndpoint {
		errs = append(errs, errors.New("metrics_endpoint and github_webhook_endpoint must differ"))
	}

	switch c.KVBackend {
	case KVBackendRedis, KVBackendNATS:
	default:
		errs = append(errs, fmt.Errorf("kv_backend must be %q or %q, got %q", KVBackendRedis, KVBackendNATS, c.KVBackend))
	}

	if c.ConfigCacheTimeout <= 0 {
		errs = append(errs, errors.New("config_cache_timeout must be positive"))
	}

	if c.OverflowMultiple <= 0 {
		errs = append(errs, errors.New("overflow_multiple must be positive"))
	}

	if c.MaxConcurrentEvents <= 0 {
		errs = append(errs, errors.New("max_concurrent_events must be positive"))
	}

	return errors.Join(errs...)
}
