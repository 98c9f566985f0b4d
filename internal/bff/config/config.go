package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	uberconfig "go.uber.org/config"
)

type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins []string

	UpstreamBaseURL       string
	HTTPClientTimeout     time.Duration
	UpstreamReadTimeout   time.Duration
	UpstreamUpdateTimeout time.Duration
	UpstreamHeavyTimeout  time.Duration
	BatchChunkSize        int

	// Sync logs are only stored when MongoURI is set.
	MongoURI           string
	DBName             string
	SyncLogsCollection string

	MetricsNamespace string
	LogLevel         string
}

// fileConfig is the layout of the optional YAML file. Durations are
// strings such as "90s".
type fileConfig struct {
	Server struct {
		Port         string   `yaml:"port"`
		ReadTimeout  string   `yaml:"readTimeout"`
		WriteTimeout string   `yaml:"writeTimeout"`
		AllowOrigins []string `yaml:"allowOrigins"`
	} `yaml:"server"`
	Upstream struct {
		BaseURL       string `yaml:"baseURL"`
		ClientTimeout string `yaml:"clientTimeout"`
		ReadTimeout   string `yaml:"readTimeout"`
		UpdateTimeout string `yaml:"updateTimeout"`
		HeavyTimeout  string `yaml:"heavyTimeout"`
	} `yaml:"upstream"`
	Batch struct {
		ChunkSize int `yaml:"chunkSize"`
	} `yaml:"batch"`
	Mongo struct {
		URI                string `yaml:"uri"`
		Database           string `yaml:"database"`
		SyncLogsCollection string `yaml:"syncLogsCollection"`
	} `yaml:"mongo"`
	Metrics struct {
		Namespace string `yaml:"namespace"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func defaults() *Config {
	return &Config{
		Port:                  "8080",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          120 * time.Second,
		AllowOrigins:          []string{"*"},
		HTTPClientTimeout:     120 * time.Second,
		UpstreamReadTimeout:   30 * time.Second,
		UpstreamUpdateTimeout: 45 * time.Second,
		UpstreamHeavyTimeout:  90 * time.Second,
		BatchChunkSize:        6,
		DBName:                "school_bff",
		SyncLogsCollection:    "criteria_sync_logs",
		MetricsNamespace:      "bff",
		LogLevel:              "info",
	}
}

// LoadConfig layers defaults, the YAML file at path (skipped when path is
// empty; ${VAR} references are expanded from the environment) and
// environment variables, then validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	yaml, err := uberconfig.NewYAML(uberconfig.File(path), uberconfig.Expand(os.LookupEnv))
	if err != nil {
		return fmt.Errorf("failed to read yaml config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Get(uberconfig.Root).Populate(&fc); err != nil {
		return fmt.Errorf("failed to populate yaml config %s: %w", path, err)
	}

	c.Port = orDefault(fc.Server.Port, c.Port)
	c.ReadTimeout = parseDuration(fc.Server.ReadTimeout, c.ReadTimeout)
	c.WriteTimeout = parseDuration(fc.Server.WriteTimeout, c.WriteTimeout)
	if len(fc.Server.AllowOrigins) > 0 {
		c.AllowOrigins = fc.Server.AllowOrigins
	}

	c.UpstreamBaseURL = orDefault(fc.Upstream.BaseURL, c.UpstreamBaseURL)
	c.HTTPClientTimeout = parseDuration(fc.Upstream.ClientTimeout, c.HTTPClientTimeout)
	c.UpstreamReadTimeout = parseDuration(fc.Upstream.ReadTimeout, c.UpstreamReadTimeout)
	c.UpstreamUpdateTimeout = parseDuration(fc.Upstream.UpdateTimeout, c.UpstreamUpdateTimeout)
	c.UpstreamHeavyTimeout = parseDuration(fc.Upstream.HeavyTimeout, c.UpstreamHeavyTimeout)
	if fc.Batch.ChunkSize != 0 {
		c.BatchChunkSize = fc.Batch.ChunkSize
	}

	c.MongoURI = orDefault(fc.Mongo.URI, c.MongoURI)
	c.DBName = orDefault(fc.Mongo.Database, c.DBName)
	c.SyncLogsCollection = orDefault(fc.Mongo.SyncLogsCollection, c.SyncLogsCollection)
	c.MetricsNamespace = orDefault(fc.Metrics.Namespace, c.MetricsNamespace)
	c.LogLevel = orDefault(fc.Log.Level, c.LogLevel)
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", c.WriteTimeout)
	c.AllowOrigins = getEnvList("CORS_ALLOW_ORIGINS", c.AllowOrigins)

	c.UpstreamBaseURL = getEnv("UPSTREAM_BASE_URL", c.UpstreamBaseURL)
	c.HTTPClientTimeout = getEnvDuration("HTTP_CLIENT_TIMEOUT", c.HTTPClientTimeout)
	c.UpstreamReadTimeout = getEnvDuration("UPSTREAM_READ_TIMEOUT", c.UpstreamReadTimeout)
	c.UpstreamUpdateTimeout = getEnvDuration("UPSTREAM_UPDATE_TIMEOUT", c.UpstreamUpdateTimeout)
	c.UpstreamHeavyTimeout = getEnvDuration("UPSTREAM_HEAVY_TIMEOUT", c.UpstreamHeavyTimeout)
	c.BatchChunkSize = getEnvInt("BATCH_CHUNK_SIZE", c.BatchChunkSize)

	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.SyncLogsCollection = getEnv("COLLECTION_SYNC_LOGS", c.SyncLogsCollection)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

func (c *Config) Validate() error {
	if c.UpstreamBaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL is required")
	}
	u, err := url.Parse(c.UpstreamBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL must be an absolute http(s) url, got %q", c.UpstreamBaseURL)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.BatchChunkSize < 1 {
		return fmt.Errorf("BATCH_CHUNK_SIZE must be at least 1, got %d", c.BatchChunkSize)
	}
	if c.UpstreamReadTimeout <= 0 || c.UpstreamUpdateTimeout <= 0 || c.UpstreamHeavyTimeout <= 0 {
		return fmt.Errorf("upstream timeouts must be positive")
	}
	// A server write deadline shorter than the slowest upstream call cuts the reply off.
	if c.WriteTimeout <= c.UpstreamHeavyTimeout {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT (%s) must exceed UPSTREAM_HEAVY_TIMEOUT (%s)", c.WriteTimeout, c.UpstreamHeavyTimeout)
	}
	if c.HTTPClientTimeout > 0 && c.HTTPClientTimeout < c.UpstreamHeavyTimeout {
		return fmt.Errorf("HTTP_CLIENT_TIMEOUT (%s) must not be shorter than UPSTREAM_HEAVY_TIMEOUT (%s)", c.HTTPClientTimeout, c.UpstreamHeavyTimeout)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return fallback
	}
	return val
}

func getEnvList(key string, fallback []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	return parseDuration(os.Getenv(key), fallback)
}

// parseDuration accepts whole seconds ("30") or a duration string ("30s").
func parseDuration(valStr string, fallback time.Duration) time.Duration {
	if valStr == "" {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		d, err := time.ParseDuration(valStr)
		if err == nil {
			return d
		}
		return fallback
	}
	return time.Duration(val) * time.Second
}
