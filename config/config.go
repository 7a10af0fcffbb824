package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string        `env:"LISTEN_ADDR" envDefault:":3001"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	PostgresURL    string        `env:"POSTGRES_URL"`
	Debug          bool          `env:"DEBUG"`
	ClaimMaxIdle   time.Duration `env:"CLAIM_MAX_IDLE" envDefault:"30s"`
	EmptyRoomGrace time.Duration `env:"EMPTY_ROOM_GRACE" envDefault:"60s"`
}

// Load reads a .env file when present, then the process environment.
func Load() (Config, error) {
	godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
