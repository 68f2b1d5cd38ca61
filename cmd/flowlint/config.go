package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds all flowlint configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	DBPath   string `json:"db_path"`
	LogLevel string `json:"log_level"`
	TenantID string `json:"tenant_id"`
}

func defaultConfig() Config {
	return Config{
		DBPath:   filepath.Join(flowlintDir(), "flowlint.db"),
		LogLevel: "info",
		TenantID: "default",
	}
}

func flowlintDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flowlint"
	}
	return filepath.Join(home, ".flowlint")
}

func settingsPath() string {
	return filepath.Join(flowlintDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("FLOWLINT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("FLOWLINT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FLOWLINT_TENANT"); v != "" {
		cfg.TenantID = v
	}

	return cfg
}
