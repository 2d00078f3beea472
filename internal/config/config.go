package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "./config/config.yaml"

type Config struct {
	Env       string        `yaml:"env" env:"ENV" env-default:"local"`
	Timezone  string        `yaml:"timezone" env:"TIMEZONE" env-default:"America/Sao_Paulo"`
	RedisAddr string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	LockTTL   time.Duration `yaml:"lock_ttl" env:"LOCK_TTL" env-default:"10s"`

	Store      `yaml:"store"`
	Refresh    `yaml:"refresh"`
	Billing    `yaml:"billing"`
	Share      `yaml:"share"`
	Auth       `yaml:"auth"`
	Outbox     `yaml:"outbox"`
	HTTPServer `yaml:"http_server"`
}

// Store is the hosted JSON tree all records live in.
type Store struct {
	BaseURL string        `yaml:"base_url" env:"STORE_BASE_URL" env-required:"true"`
	Auth    string        `yaml:"auth" env:"STORE_AUTH"`
	Timeout time.Duration `yaml:"timeout" env:"STORE_TIMEOUT" env-default:"10s"`
}

type Refresh struct {
	Interval     time.Duration `yaml:"interval" env:"REFRESH_INTERVAL" env-default:"10s"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"REFRESH_FETCH_TIMEOUT" env-default:"15s"`
}

type Billing struct {
	AlertWindowDays int `yaml:"alert_window_days" env:"BILLING_ALERT_WINDOW_DAYS" env-default:"5"`
}

type Share struct {
	DefaultAddress string `yaml:"default_address" env:"SHARE_DEFAULT_ADDRESS"`
}

type Auth struct {
	JWTSecret   string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	TokenTTL    time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL" env-default:"12h"`
	DefaultUser string        `yaml:"default_user" env:"AUTH_DEFAULT_USER" env-default:"admin"`
	DefaultPass string        `yaml:"default_pass" env:"AUTH_DEFAULT_PASS" env-default:"1234"`
}

// Outbox parks failed secondary writes. Without a DSN it is kept in memory.
type Outbox struct {
	DSN      string        `yaml:"dsn" env:"OUTBOX_DSN"`
	Interval time.Duration `yaml:"interval" env:"OUTBOX_INTERVAL" env-default:"1m"`
	Batch    int           `yaml:"batch" env:"OUTBOX_BATCH" env-default:"50"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

func MustLoad() *Config {
	// .env is optional; its values only fill variables not already set
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return &cfg
}

// Location resolves Timezone, falling back to the host zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}

	return loc
}
