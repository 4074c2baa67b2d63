package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes YAML values like "30s" or "5m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all configuration for the application
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Auth    AuthConfig    `yaml:"auth"`
	Cache   CacheConfig   `yaml:"cache"`
	AWS     AWSConfig     `yaml:"aws"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// BackendConfig holds the backend facade endpoint configuration
type BackendConfig struct {
	URL            string   `yaml:"url"`
	RequestTimeout Duration `yaml:"request_timeout"`
}

// AuthConfig holds session authentication configuration
type AuthConfig struct {
	TokenFile string `yaml:"token_file"`
}

// CacheConfig holds cache retention configuration
type CacheConfig struct {
	Retention Duration `yaml:"retention"`
}

// AWSConfig holds AWS configuration for the attachment fallback path
type AWSConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// StorageConfig holds local storage configuration
type StorageConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Backend.URL == "" {
		c.Backend.URL = "http://localhost:8080"
	}
	if c.Backend.RequestTimeout == 0 {
		c.Backend.RequestTimeout = Duration(30 * time.Second)
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "."
	}
}
