package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"

	"github.com/xxxsen/doctriage/internal/classify"
)

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type AIConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Data     interface{} `json:"data"`
}

type ReportConfig struct {
	Enabled bool        `json:"enabled"`
	Type    string      `json:"type"`
	Data    interface{} `json:"data"`
}

type JobsConfig struct {
	ClassifySpec string `json:"classify_spec"`
	RolesSpec    string `json:"roles_spec"`
	Apply        bool   `json:"apply"`
}

type Config struct {
	Database     DatabaseConfig   `json:"database"`
	CatalogPath  string           `json:"catalog_path"`
	DefaultState string           `json:"default_state"`
	LogConfig    logger.LogConfig `json:"log_config"`
	AI           AIConfig         `json:"ai"`
	Report       ReportConfig     `json:"report"`
	Jobs         JobsConfig       `json:"jobs"`
	Tuning       *classify.Tuning `json:"tuning"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	// Pre-seed so a partial tuning block overrides only the fields it
	// names.
	defaults := classify.DefaultTuning()
	cfg.Tuning = &defaults
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.CatalogPath == "" {
		return nil, fmt.Errorf("catalog_path is required")
	}
	if cfg.DefaultState == "" {
		cfg.DefaultState = "TS"
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Report.Enabled && cfg.Report.Type == "" {
		cfg.Report.Type = "local"
	}
	return &cfg, nil
}

// ResolveTuning returns the effective pipeline constants: the defaults
// with any configured overrides applied.
func (c *Config) ResolveTuning() classify.Tuning {
	if c.Tuning != nil {
		return *c.Tuning
	}
	return classify.DefaultTuning()
}
