package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the health engine.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Recorder RecorderConfig `yaml:"recorder"`
	Health   HealthConfig   `yaml:"health"`
	Export   ExportConfig   `yaml:"export"`
}

// ServerConfig controls the gRPC and HTTP listeners.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	HTTPAddress     string        `yaml:"httpAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// RecorderConfig sizes the rolling latency window.
type RecorderConfig struct {
	HistorySize int `yaml:"historySize"`
}

// HealthConfig controls probe sampling and thresholds.
type HealthConfig struct {
	Interval          time.Duration             `yaml:"interval"`
	CPUSampleInterval time.Duration             `yaml:"cpuSampleInterval"`
	DiskPath          string                    `yaml:"diskPath"`
	Probes            map[string]ProbeThreshold `yaml:"probes"`
}

// ProbeThreshold holds optional warning/max bounds for a named probe.
type ProbeThreshold struct {
	Warning *float64 `yaml:"warning"`
	Max     *float64 `yaml:"max"`
}

// ExportConfig controls periodic structured snapshot export. An empty path
// disables file export.
type ExportConfig struct {
	Path     string        `yaml:"path"`
	Interval time.Duration `yaml:"interval"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("DOCROUTER_HEALTH_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.Recorder.HistorySize < 1 {
		return fmt.Errorf("recorder.historySize must be at least 1, got %d", c.Recorder.HistorySize)
	}
	if c.Health.Interval <= 0 {
		return fmt.Errorf("health.interval must be positive, got %s", c.Health.Interval)
	}
	if c.Export.Path != "" && c.Export.Interval <= 0 {
		return fmt.Errorf("export.interval must be positive when export.path is set")
	}

	names := make([]string, 0, len(c.Health.Probes))
	for name := range c.Health.Probes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := c.Health.Probes[name]
		if t.Warning != nil && t.Max != nil && *t.Warning > *t.Max {
			return fmt.Errorf("health.probes.%s: warning %g exceeds max %g", name, *t.Warning, *t.Max)
		}
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":50061",
			HTTPAddress:     ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Logging:  LoggingConfig{Level: "info", JSON: false},
		Recorder: RecorderConfig{HistorySize: 1000},
		Health: HealthConfig{
			Interval:          30 * time.Second,
			CPUSampleInterval: time.Second,
			DiskPath:          "/",
			Probes: map[string]ProbeThreshold{
				"cpu_usage":    bounds(70, 90),
				"memory_usage": bounds(80, 95),
				"disk_usage":   bounds(80, 95),
			},
		},
		Export: ExportConfig{Interval: 5 * time.Minute},
	}
}

func bounds(warning, max float64) ProbeThreshold {
	return ProbeThreshold{Warning: &warning, Max: &max}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DOCROUTER_HEALTH_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("DOCROUTER_HEALTH_HTTP_ADDRESS"); v != "" {
		cfg.Server.HTTPAddress = v
	}
	if v := os.Getenv("DOCROUTER_HEALTH_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
	if v := os.Getenv("DOCROUTER_HEALTH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DOCROUTER_HEALTH_LOG_FORMAT"); v != "" {
		cfg.Logging.JSON = strings.EqualFold(v, "json")
	}
	if v := os.Getenv("DOCROUTER_HEALTH_HISTORY_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Recorder.HistorySize = n
		}
	}
	if v := os.Getenv("DOCROUTER_HEALTH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Health.Interval = d
		}
	}
	if v := os.Getenv("DOCROUTER_HEALTH_CPU_SAMPLE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Health.CPUSampleInterval = d
		}
	}
	if v := os.Getenv("DOCROUTER_HEALTH_DISK_PATH"); v != "" {
		cfg.Health.DiskPath = v
	}
	if v := os.Getenv("DOCROUTER_HEALTH_EXPORT_PATH"); v != "" {
		cfg.Export.Path = v
	}
	if v := os.Getenv("DOCROUTER_HEALTH_EXPORT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Export.Interval = d
		}
	}
}
