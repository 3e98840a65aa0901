package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
// It captures the tweet store location, export target, and log/metrics
// destinations.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type StorageConfig struct {
	// Path to the SQLite tweet store
	DBPath string `yaml:"dbPath"`
}

type ExportConfig struct {
	// Directory graph files are written to; file name is <topic>.graphml
	Dir string `yaml:"dir"`
}

type LoggingConfig struct {
	// Fixed log destination for progress and anomalies
	Path string `yaml:"path"`
}

type MetricsConfig struct {
	// Listen address for /metrics; empty disables the server
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{DBPath: "./tweets.db"},
		Export:  ExportConfig{Dir: "."},
		Logging: LoggingConfig{Path: "./tweetgraph.log"},
		Metrics: MetricsConfig{Addr: ""},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
// A .env file in the working directory is honored when present.
func (c *Config) ResolveEnv() {
	_ = godotenv.Load()
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = os.Getenv("TWEETGRAPH_DB")
	}
	if c.Logging.Path == "" {
		c.Logging.Path = os.Getenv("TWEETGRAPH_LOG")
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
