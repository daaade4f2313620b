package conf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Main application config.
type Config struct {
	ListenAddr string `json:"listen_addr"`
	// shared secret for the /api/cron trigger; empty disables the endpoint
	CronSecret string     `json:"cron_secret"`
	DB         DBConfig   `json:"db"`
	Feed       FeedConfig `json:"feed"`
	Sync       SyncConfig `json:"sync"`
}

type DBConfig struct {
	// sqlite (default), postgres or mysql
	Driver string `json:"driver"`
	// file path for sqlite, DSN for postgres/mysql
	DSN string `json:"dsn"`
}

type FeedConfig struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// supermarket id assigned to records whose label resolves to nothing
	FallbackSupermarketID string `json:"fallback_supermarket_id"`
}

type SyncConfig struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"interval_minutes"`
}

func LoadOrCreate(path string) (*Config, bool, error) {
	// make sure the directory exists
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// default config
			cfg := &Config{
				ListenAddr: ":8080",
				CronSecret: "",
				DB: DBConfig{
					Driver: "sqlite",
					DSN:    "",
				},
				Feed: FeedConfig{
					URL:                   "https://example.com/api/promotions",
					TimeoutSeconds:        20,
					FallbackSupermarketID: "ivoG",
				},
				Sync: SyncConfig{
					Enabled:         false,
					IntervalMinutes: 60,
				},
			}
			if err := Save(path, cfg); err != nil {
				return nil, false, fmt.Errorf("writing default config: %w", err)
			}
			return cfg, true, nil
		}
		return nil, false, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, false, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, false, nil
}

func Save(path string, cfg *Config) error {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}
