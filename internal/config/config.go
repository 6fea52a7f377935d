package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Log     LogConfig     `yaml:"log"`
	QR      QRConfig      `yaml:"qr"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// StorageConfig selects where ledger state is persisted
type StorageConfig struct {
	Backend string `yaml:"backend"` // "file" or "pebble"
	Path    string `yaml:"path"`    // state file, or database directory for pebble
}

// LedgerConfig holds the chain parameters
type LedgerConfig struct {
	Difficulty       int           `yaml:"difficulty"`
	Workers          int           `yaml:"workers"`
	AutoMineInterval time.Duration `yaml:"auto_mine_interval"` // 0 disables the background miner
	MineTimeout      time.Duration `yaml:"mine_timeout"`       // 0 means no limit
}

// LogConfig controls logrus output
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// QRConfig controls verification QR codes
type QRConfig struct {
	VerificationURL string `yaml:"verification_url"`
	Size            int    `yaml:"size"`
	OutputDir       string `yaml:"output_dir"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    "data/blockchain_data.json",
		},
		Ledger: LedgerConfig{
			Difficulty: 3,
			Workers:    1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		QR: QRConfig{
			VerificationURL: "http://verify.unida.gontor.ac.id/verify",
			Size:            256,
			OutputDir:       ".",
		},
	}
}

// Load loads configuration from a YAML file and environment variables
func Load(path string) (*Config, error) {
	cfg := Default()

	// Load from YAML file if it exists
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the ledger cannot run with
func (c *Config) Validate() error {
	if c.Ledger.Difficulty < 0 || c.Ledger.Difficulty > 64 {
		return fmt.Errorf("ledger.difficulty must be between 0 and 64, got %d", c.Ledger.Difficulty)
	}
	if c.Ledger.Workers < 1 {
		return fmt.Errorf("ledger.workers must be at least 1, got %d", c.Ledger.Workers)
	}
	switch c.Storage.Backend {
	case "file", "pebble":
	default:
		return fmt.Errorf("storage.backend must be file or pebble, got %q", c.Storage.Backend)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path must be set")
	}
	return nil
}

func (c *Config) loadEnv() {
	// Server config
	if port := os.Getenv("DEGREECHAIN_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if host := os.Getenv("DEGREECHAIN_SERVER_HOST"); host != "" {
		c.Server.Host = host
	}

	// Storage config
	if backend := os.Getenv("DEGREECHAIN_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if path := os.Getenv("DEGREECHAIN_STORAGE_PATH"); path != "" {
		c.Storage.Path = path
	}

	// Ledger config
	if difficulty := os.Getenv("DEGREECHAIN_DIFFICULTY"); difficulty != "" {
		if d, err := strconv.Atoi(difficulty); err == nil {
			c.Ledger.Difficulty = d
		}
	}
	if workers := os.Getenv("DEGREECHAIN_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			c.Ledger.Workers = w
		}
	}
	if interval := os.Getenv("DEGREECHAIN_AUTO_MINE_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			c.Ledger.AutoMineInterval = d
		}
	}
	if timeout := os.Getenv("DEGREECHAIN_MINE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Ledger.MineTimeout = d
		}
	}

	// Log config
	if level := os.Getenv("DEGREECHAIN_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("DEGREECHAIN_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}
}
