package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSecret is the publicly known development signing key.
const DefaultSecret = "dev-secret-change-me"

const (
	AnswersMemory = "memory"
	AnswersRedis  = "redis"
	AnswersSQLite = "sqlite"
)

type User struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Email        string `yaml:"email"`
	Role         string `yaml:"role"`
	PasswordHash string `yaml:"password_hash"`
}

type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Auth struct {
		Secret      string `yaml:"secret"`
		TokenTTL    string `yaml:"token_ttl"`
		AllowSignup bool   `yaml:"allow_signup"`
		Users       []User `yaml:"users"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Answers struct {
		Driver     string `yaml:"driver"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"answers"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Auth.Secret = DefaultSecret
	cfg.Auth.TokenTTL = "8h"
	cfg.Auth.AllowSignup = true
	cfg.Redis.TTL = "168h"
	cfg.Answers.Driver = AnswersMemory
	cfg.Answers.SQLitePath = "mcq-answers.db"
	return cfg
}

// Load reads YAML config from path on top of the defaults. A missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Answers.Driver {
	case AnswersMemory, AnswersSQLite:
	case AnswersRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("answers driver redis needs redis.addr")
		}
	default:
		return fmt.Errorf("unknown answers driver %q", c.Answers.Driver)
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret must not be empty")
	}
	return nil
}

// UsesDefaultSecret reports whether tokens would be signed with DefaultSecret.
func (c Config) UsesDefaultSecret() bool {
	return c.Auth.Secret == DefaultSecret
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
