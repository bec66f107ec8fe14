package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Artifacts   ArtifactsConfig `toml:"artifacts"`
	Workers     WorkersConfig   `toml:"workers"`
	Retention   RetentionConfig `toml:"retention"`
	Queue       QueueConfig     `toml:"queue"`
	Tools       ToolsConfig     `toml:"tools"`
	Logging     LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// ArtifactsConfig selects and configures the artifact-store backend.
type ArtifactsConfig struct {
	Backend         string         `toml:"backend"`          // "filesystem" or "s3"
	Root            string         `toml:"root"`             // Root directory for the filesystem backend
	RawBucket       string         `toml:"raw_bucket"`       // Bucket for raw submission uploads
	ProcessedBucket string         `toml:"processed_bucket"` // Bucket for processed outputs
	PublicBaseURL   string         `toml:"public_base_url"`  // Base URL artifacts are served from (filesystem backend)
	S3              ArtifactsS3    `toml:"s3"`
}

// ArtifactsS3 configures the S3 backend.
type ArtifactsS3 struct {
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"` // Optional, for S3-compatible stores
}

type WorkersConfig struct {
	Count        int    `toml:"count"`         // Number of concurrent workers
	PollInterval string `toml:"poll_interval"` // e.g., "5s" - sleep when the queue is empty
}

// RetentionConfig governs artifact/job lifetime.
type RetentionConfig struct {
	Window          string `toml:"window"`           // Age at which terminal jobs are swept
	CleanupInterval string `toml:"cleanup_interval"` // Sweeper tick
	AccessThreshold int    `toml:"access_threshold"` // Max successful downloads per artifact
}

type QueueConfig struct {
	AverageJobTimeSeconds int `toml:"average_job_time_seconds"` // ETA multiplier for queue position
}

// ToolsConfig locates external tool binaries and sets handler timeouts.
type ToolsConfig struct {
	GhostscriptPath string `toml:"ghostscript_path"`
	LibreOfficePath string `toml:"libreoffice_path"`
	DefaultTimeout  string `toml:"default_timeout"` // Soft timeout for conversion/compression handlers
	OfficeTimeout   string `toml:"office_timeout"`  // Soft timeout for Office conversions
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns the built-in defaults, overridden by config
// files, environment and CLI flags in that order.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/docsmart",
				ResetOnStartup: false,
			},
		},
		Artifacts: ArtifactsConfig{
			Backend:         "filesystem",
			Root:            "./data/artifacts",
			RawBucket:       "raw-inputs",
			ProcessedBucket: "processed-pdfs",
			PublicBaseURL:   "http://localhost:8080/artifacts",
			S3: ArtifactsS3{
				Region: "us-east-1",
			},
		},
		Workers: WorkersConfig{
			Count:        4,
			PollInterval: "5s",
		},
		Retention: RetentionConfig{
			Window:          "10m",
			CleanupInterval: "10m",
			AccessThreshold: 3,
		},
		Queue: QueueConfig{
			AverageJobTimeSeconds: 30,
		},
		Tools: ToolsConfig{
			GhostscriptPath: "gs",
			LibreOfficePath: "soffice",
			DefaultTimeout:  "5m",
			OfficeTimeout:   "10m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("DOCSMART_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("DOCSMART_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("DOCSMART_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("DOCSMART_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if backend := os.Getenv("DOCSMART_ARTIFACT_BACKEND"); backend != "" {
		config.Artifacts.Backend = backend
	}
	if root := os.Getenv("DOCSMART_ARTIFACT_ROOT"); root != "" {
		config.Artifacts.Root = root
	}

	if workers := os.Getenv("DOCSMART_WORKERS"); workers != "" {
		if c, err := strconv.Atoi(workers); err == nil && c > 0 {
			config.Workers.Count = c
		}
	}

	if level := os.Getenv("DOCSMART_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// PollInterval parses the worker poll interval, falling back to 5s.
func (c *Config) PollInterval() time.Duration {
	return parseDurationOr(c.Workers.PollInterval, 5*time.Second)
}

// RetentionWindow parses the retention window, falling back to 10m.
func (c *Config) RetentionWindow() time.Duration {
	return parseDurationOr(c.Retention.Window, 10*time.Minute)
}

// CleanupInterval parses the sweeper tick, falling back to 10m.
func (c *Config) CleanupInterval() time.Duration {
	return parseDurationOr(c.Retention.CleanupInterval, 10*time.Minute)
}

// DefaultToolTimeout parses the conversion/compression soft timeout.
func (c *Config) DefaultToolTimeout() time.Duration {
	return parseDurationOr(c.Tools.DefaultTimeout, 5*time.Minute)
}

// OfficeToolTimeout parses the Office conversion soft timeout.
func (c *Config) OfficeToolTimeout() time.Duration {
	return parseDurationOr(c.Tools.OfficeTimeout, 10*time.Minute)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
