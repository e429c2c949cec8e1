package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"minutes_linker/internal/links"
)

const DateLayout = "2006-01-02"

type MinutesConfig struct {
	Host          string `yaml:"host" env:"M2G_MINUTES_HOST"`
	UserAgent     string `yaml:"user_agent" env:"M2G_USER_AGENT"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	RespectRobots bool   `yaml:"respect_robots" env:"M2G_RESPECT_ROBOTS"`
}

type GroupsConfig struct {
	BaseURL         string `yaml:"base_url" env:"M2G_GROUPS_URL"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
}

type GitHubConfig struct {
	Token  string `yaml:"-" env:"M2G_TOKEN"`
	APIURL string `yaml:"api_url" env:"M2G_GITHUB_API_URL"`
}

type DBConfig struct {
	Connection  string `yaml:"connection" env:"M2G_MONGO_URI"`
	Database    string `yaml:"database"`
	Collections struct {
		Outcomes string `yaml:"outcomes"`
	} `yaml:"collections"`
}

type LogicConfig struct {
	RateLimit            float64  `yaml:"rate_limit" env:"M2G_RATE_LIMIT"`
	Transcript           bool     `yaml:"transcript" env:"M2G_TRANSCRIPT"`
	MessageTemplate      string   `yaml:"message_template"`
	Repositories         []string `yaml:"repositories" env:"M2G_REPOSITORIES" envSeparator:","`
	MaxConcurrentWorkers int      `yaml:"max_concurrent_workers"`
}

type IRCConfig struct {
	Server          string   `yaml:"server" env:"M2G_IRC_SERVER"`
	Port            int      `yaml:"port" env:"M2G_IRC_PORT"`
	UseTLS          bool     `yaml:"tls" env:"M2G_IRC_TLS"`
	Nick            string   `yaml:"nick" env:"M2G_IRC_NICK"`
	Username        string   `yaml:"username"`
	RealName        string   `yaml:"real_name"`
	Password        string   `yaml:"-" env:"M2G_IRC_PASSWORD"`
	Channels        []string `yaml:"channels" env:"M2G_IRC_CHANNELS" envSeparator:","`
	ResponseDelayMS int      `yaml:"response_delay_ms"`
}

type Config struct {
	LogLevel string        `yaml:"log_level" env:"M2G_LOG_LEVEL"`
	Minutes  MinutesConfig `yaml:"minutes"`
	Groups   GroupsConfig  `yaml:"groups"`
	GitHub   GitHubConfig  `yaml:"github"`
	DB       DBConfig      `yaml:"db"`
	Logic    LogicConfig   `yaml:"logic"`
	IRC      IRCConfig     `yaml:"irc"`
}

func Default() *Config {
	cfg := &Config{
		LogLevel: "info",
		Minutes: MinutesConfig{
			Host:       "www.w3.org",
			UserAgent:  "minutes_linker",
			TimeoutSec: 30,
		},
		Groups: GroupsConfig{
			BaseURL:         "https://w3c.github.io/groups/",
			CacheTTLMinutes: 60,
		},
		DB: DBConfig{Database: "minutes_linker"},
		Logic: LogicConfig{
			RateLimit:            1.0,
			MaxConcurrentWorkers: 4,
		},
		IRC: IRCConfig{
			Server:          "irc.w3.org",
			Port:            6679,
			UseTLS:          true,
			Nick:            "gb",
			Username:        "minutes_linker",
			RealName:        "Linking GitHub issues to minutes",
			ResponseDelayMS: 1000,
		},
	}
	cfg.DB.Collections.Outcomes = "outcomes"
	return cfg
}

// LoadConfig reads the yaml file at path (a missing file keeps the defaults),
// then the given .env files (".env" when none) and finally the M2G_* environment.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if err := ValidateRateLimit(c.Logic.RateLimit); err != nil {
		return err
	}
	if c.Minutes.Host == "" {
		return errors.New("minutes.host must not be empty")
	}
	for _, r := range c.Logic.Repositories {
		if _, err := links.ParseRepository(r); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Minutes.TimeoutSec) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Groups.CacheTTLMinutes) * time.Minute
}

// Workers is the bound on concurrent outcome sinks, -1 meaning unbounded.
func (c *Config) Workers() int {
	if c.Logic.MaxConcurrentWorkers <= 0 {
		return -1
	}
	return c.Logic.MaxConcurrentWorkers
}

func ValidateRateLimit(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return fmt.Errorf("rate limit must be a positive finite number of seconds, got %v", seconds)
	}
	return nil
}
