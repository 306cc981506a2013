package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	DB            DBConfig         `json:"db"`
	MigrationsDir string           `json:"migrations_dir"`
	LogConfig     logger.LogConfig `json:"log_config"`
	FileStore     FileStoreConfig  `json:"file_store"`
	AI            AIConfig         `json:"ai"`
	Chat          ChatConfig       `json:"chat"`
	CORSOrigins   []string         `json:"cors_origins"`
}

type DBConfig struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	Provider        string      `json:"provider"`
	Model           string      `json:"model"`
	Timeout         int         `json:"timeout"`
	MaxOutputTokens int         `json:"max_output_tokens"`
	Data            interface{} `json:"data"`
}

type ChatConfig struct {
	RescanCron        string `json:"rescan_cron"`
	TurnRetentionDays int    `json:"turn_retention_days"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "sqlite"
	}
	if cfg.DB.DSN == "" {
		if cfg.DB.Driver != "sqlite" {
			return nil, fmt.Errorf("db.dsn is required for driver %s", cfg.DB.Driver)
		}
		cfg.DB.DSN = "docchat.db"
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
		cfg.FileStore.Data = map[string]interface{}{"dir": "uploads"}
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 45
	}
	if cfg.AI.MaxOutputTokens == 0 {
		cfg.AI.MaxOutputTokens = 300
	}
	if cfg.Chat.RescanCron == "" {
		cfg.Chat.RescanCron = "*/10 * * * *"
	}
	if cfg.Chat.TurnRetentionDays == 0 {
		cfg.Chat.TurnRetentionDays = 90
	}
	return &cfg, nil
}

// LocalDir digs the upload directory out of a local file store config so the
// startup scan knows where to look. Empty for non-local stores.
func (c *Config) LocalDir() string {
	if c.FileStore.Type != "local" {
		return ""
	}
	data, err := json.Marshal(c.FileStore.Data)
	if err != nil {
		return ""
	}
	var local struct {
		Dir string `json:"dir"`
	}
	if err := json.Unmarshal(data, &local); err != nil {
		return ""
	}
	return local.Dir
}
