// Package config loads process settings from an optional YAML file with
// TYCOON_* environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Simulation Simulation `yaml:"simulation" json:"simulation"`
	Game       Game       `yaml:"game" json:"game"`
	Storage    Storage    `yaml:"storage" json:"storage"`
	API        API        `yaml:"api" json:"api"`
	Catalog    Catalog    `yaml:"catalog" json:"catalog"`
	Log        Log        `yaml:"log" json:"log"`
}

type Simulation struct {
	TickInterval             time.Duration `yaml:"tick_interval" json:"tick_interval"`
	Seed                     int64         `yaml:"seed" json:"seed"`
	CompetitorActivityChance float64       `yaml:"competitor_activity_chance" json:"competitor_activity_chance"`
	MarketShareStep          float64       `yaml:"market_share_step" json:"market_share_step"`
	MarketShareCap           float64       `yaml:"market_share_cap" json:"market_share_cap"`
}

type Game struct {
	Difficulty string `yaml:"difficulty" json:"difficulty"`
}

type Storage struct {
	Driver      string `yaml:"driver" json:"driver"`
	SQLitePath  string `yaml:"sqlite_path" json:"sqlite_path"`
	DatabaseURL string `yaml:"database_url" json:"-"`
	Autosave    bool   `yaml:"autosave" json:"autosave"`
}

type API struct {
	Addr     string `yaml:"addr" json:"addr"`
	AdminKey string `yaml:"admin_key" json:"-"`
}

type Catalog struct {
	Path string `yaml:"path" json:"path"`
}

type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Simulation: Simulation{
			TickInterval:             3 * time.Second,
			CompetitorActivityChance: 0.3,
			MarketShareStep:          0.5,
			MarketShareCap:           30,
		},
		Game:    Game{Difficulty: "normal"},
		Storage: Storage{Driver: "sqlite", SQLitePath: "tycoon.db", Autosave: true},
		API:     API{Addr: ":8080"},
		Log:     Log{Level: "info", Format: "text"},
	}
}

// Load reads path (if non-empty) over the defaults, then applies env overrides.
// An empty path falls back to TYCOON_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = envDefault("TYCOON_CONFIG", "")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Storage.SQLitePath = envDefault("TYCOON_DB_PATH", c.Storage.SQLitePath)
	if url := envDefault("TYCOON_DATABASE_URL", ""); url != "" {
		c.Storage.DatabaseURL = url
		c.Storage.Driver = "postgres"
	}
	c.API.Addr = envDefault("TYCOON_ADDR", c.API.Addr)
	c.API.AdminKey = envDefault("TYCOON_ADMIN_KEY", c.API.AdminKey)
	c.Simulation.TickInterval = envDurationDefault("TYCOON_TICK_INTERVAL", c.Simulation.TickInterval)
	c.Simulation.Seed = envInt64Default("TYCOON_SEED", c.Simulation.Seed)
	c.Game.Difficulty = envDefault("TYCOON_DIFFICULTY", c.Game.Difficulty)
}

// Validate rejects settings the process cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Simulation.TickInterval <= 0 {
		errs = append(errs, errors.New("simulation.tick_interval must be positive"))
	}
	if p := c.Simulation.CompetitorActivityChance; p < 0 || p > 1 {
		errs = append(errs, fmt.Errorf("simulation.competitor_activity_chance %v outside [0, 1]", p))
	}
	if c.Simulation.MarketShareCap <= 0 || c.Simulation.MarketShareCap > 100 {
		errs = append(errs, fmt.Errorf("simulation.market_share_cap %v outside (0, 100]", c.Simulation.MarketShareCap))
	}
	switch c.Game.Difficulty {
	case "normal", "challenging":
	default:
		errs = append(errs, fmt.Errorf("game.difficulty %q must be normal or challenging", c.Game.Difficulty))
	}
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required for sqlite"))
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("storage.database_url is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q must be sqlite or postgres", c.Storage.Driver))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// StorageTarget returns the path or URL for the configured driver.
func (c Config) StorageTarget() string {
	if c.Storage.Driver == "postgres" {
		return c.Storage.DatabaseURL
	}
	return c.Storage.SQLitePath
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level %q is not debug, info, warn or error", s)
	}
}

// NewLogger builds the process logger from the log settings.
func (l Log) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(l.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
