package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Economy holds the tunables of the economy engine. Durations are stored in
// seconds so they can live in the TOML file as plain integers.
type Economy struct {
	StartingBalance     int64 `toml:"starting_balance"`
	DailyReward         int64 `toml:"daily_reward"`
	DailyIntervalSecs   int64 `toml:"daily_interval_seconds"`
	MaxLoan             int64 `toml:"max_loan"`
	LoanDurationSecs    int64 `toml:"loan_duration_seconds"`
	TransactionsLimit   int   `toml:"transaction_history_limit"`
	EventLogLimit       int   `toml:"event_log_limit"`
}

// DailyInterval returns the daily-reward cooldown as a duration.
func (e Economy) DailyInterval() time.Duration {
	return time.Duration(e.DailyIntervalSecs) * time.Second
}

// LoanDuration returns how long a loan runs before it is due.
func (e Economy) LoanDuration() time.Duration {
	return time.Duration(e.LoanDurationSecs) * time.Second
}

// Config is the merged process configuration: compiled defaults, overridden
// by the TOML file, overridden by environment variables.
type Config struct {
	DiscordToken string   `env:"DISCORD_TOKEN"`
	StoragePath  string   `env:"STORAGE_PATH" envDefault:"data/ledger.json"`
	EventsPath   string   `env:"EVENTS_PATH" envDefault:"data/events.json"`
	ConfigFile   string   `env:"CONFIG_FILE" envDefault:"pursebot.toml"`
	Prefix       string   `env:"COMMAND_PREFIX"`
	Admins       []string `env:"ADMINS" envSeparator:","`
	MetricsAddr  string   `env:"METRICS_ADDR" envDefault:":9091"`
	LogFile      string   `env:"LOG_FILE"`
	ConsoleUser  string   `env:"CONSOLE_USER" envDefault:"operator"`

	Economy   Economy
	Cooldowns map[string]int // per-command cooldown overrides, seconds
}

// fileConfig mirrors the optional TOML file.
type fileConfig struct {
	Prefix    string         `toml:"prefix"`
	Admins    []string       `toml:"admins"`
	Cooldowns map[string]int `toml:"cooldown_seconds"`
	Economy   Economy        `toml:"economy"`
}

func defaults() Config {
	return Config{
		Prefix: "*",
		Economy: Economy{
			StartingBalance:   1000,
			DailyReward:       500,
			DailyIntervalSecs: int64((24 * time.Hour).Seconds()),
			MaxLoan:           5000,
			LoanDurationSecs:  int64((7 * 24 * time.Hour).Seconds()),
			TransactionsLimit: 20,
			EventLogLimit:     500,
		},
		Cooldowns: map[string]int{},
	}
}

// New loads the configuration. A missing TOML file is not an error; a broken
// one is.
func New() (*Config, error) {
	// No .env file is fine; system environment still applies.
	_ = godotenv.Load()

	cfg := defaults()

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.ConfigFile != "" {
		if err := cfg.applyFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
		// Env wins over file for the keys it sets, so re-apply it last.
		if err := env.Parse(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse environment: %w", err)
		}
	}

	if cfg.Economy.EventLogLimit > 1000 {
		cfg.Economy.EventLogLimit = 1000
	}

	return &cfg, nil
}

func (c *Config) applyFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if fc.Prefix != "" {
		c.Prefix = fc.Prefix
	}
	if len(fc.Admins) > 0 {
		c.Admins = fc.Admins
	}
	for name, secs := range fc.Cooldowns {
		c.Cooldowns[strings.ToLower(name)] = secs
	}
	if fc.Economy.StartingBalance > 0 {
		c.Economy.StartingBalance = fc.Economy.StartingBalance
	}
	if fc.Economy.DailyReward > 0 {
		c.Economy.DailyReward = fc.Economy.DailyReward
	}
	if fc.Economy.DailyIntervalSecs > 0 {
		c.Economy.DailyIntervalSecs = fc.Economy.DailyIntervalSecs
	}
	if fc.Economy.MaxLoan > 0 {
		c.Economy.MaxLoan = fc.Economy.MaxLoan
	}
	if fc.Economy.LoanDurationSecs > 0 {
		c.Economy.LoanDurationSecs = fc.Economy.LoanDurationSecs
	}
	if fc.Economy.TransactionsLimit > 0 {
		c.Economy.TransactionsLimit = fc.Economy.TransactionsLimit
	}
	if fc.Economy.EventLogLimit > 0 {
		c.Economy.EventLogLimit = fc.Economy.EventLogLimit
	}
	return nil
}

// IsAdmin reports whether username is on the admin list (case-insensitive).
func (c *Config) IsAdmin(username string) bool {
	username = strings.ToLower(strings.TrimSpace(username))
	for _, a := range c.Admins {
		if strings.ToLower(strings.TrimSpace(a)) == username {
			return true
		}
	}
	return false
}

// CooldownFor returns the configured cooldown override for a command, or the
// given fallback when none is set.
func (c *Config) CooldownFor(name string, fallback time.Duration) time.Duration {
	if secs, ok := c.Cooldowns[strings.ToLower(name)]; ok {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
