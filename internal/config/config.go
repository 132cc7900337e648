package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string `mapstructure:"env"`          // current application environment (local, dev, production etc)
	TelegramAPIToken string `mapstructure:"-"`            // Telegram API token loaded from environment
	LexiconPath      string `mapstructure:"lexicon_path"` // path to the lexicon JSON file
	DB               DB     `mapstructure:"database"`     // remote document store configuration section
	SQLite           SQLite `mapstructure:"sqlite"`       // local key-value store configuration section
	Quiz             Quiz   `mapstructure:"quiz"`         // quiz session tunables
	Sync             Sync   `mapstructure:"sync"`         // local to remote reconciliation
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// SQLite contains the local store parameters.
type SQLite struct {
	Path string `mapstructure:"path"` // database file, ":memory:" for a throwaway store
}

// Quiz contains quiz session parameters.
type Quiz struct {
	SessionSize  int           `mapstructure:"session_size"`  // maximum words per session
	DefaultTimer int           `mapstructure:"default_timer"` // seconds per question when the user has no setting
	RevealDelay  time.Duration `mapstructure:"reveal_delay"`  // how long the answer stays on screen
	ReviewPolicy string        `mapstructure:"review_policy"` // progressive or mastery_only
}

// Sync contains the sync job parameters.
type Sync struct {
	Schedule string `mapstructure:"schedule"` // cron spec
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// HasRemote reports whether a remote database is configured.
func (db DB) HasRemote() bool {
	return db.URL != ""
}

// Load reads configuration from config files and environment variables.
// A .env file in the working directory, if present, is loaded first.
func Load() (*Config, error) {
	return load("./config", ".env")
}

func load(configPath, envFile string) (*Config, error) {
	// Variables already set in the environment take precedence over .env.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading %s: %w", envFile, err)
	}

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("lexicon_path", "assets/lexique.json")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("sqlite.path", "data/lexique.db")
	v.SetDefault("quiz.session_size", 10)
	v.SetDefault("quiz.default_timer", 10)
	v.SetDefault("quiz.reveal_delay", "700ms")
	v.SetDefault("quiz.review_policy", "progressive")
	v.SetDefault("sync.schedule", "@every 15m")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, fmt.Errorf("%w: TELEGRAM_API_TOKEN", ErrMissingEnvironmentVariables)
	}

	// Without a database the remote document store is kept in memory.
	cfg.DB.URL = v.GetString("database_url")

	return &cfg, nil
}
