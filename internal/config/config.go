package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	DataFile        string        `env:"DATA_FILE" envDefault:"db.json"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	ReadOnly        bool          `env:"READ_ONLY" envDefault:"false"`
	RequireSession  bool          `env:"REQUIRE_SESSION" envDefault:"false"`
	SessionTTLHours int           `env:"SESSION_TTL_HOURS" envDefault:"24"`
	LoginRateMax    int           `env:"LOGIN_RATE_MAX" envDefault:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"10m"`
	RedirectDelay   time.Duration `env:"REDIRECT_DELAY" envDefault:"1500ms"`
	LoginPath       string        `env:"LOGIN_PATH" envDefault:"/login"`
	PollInterval    time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
	CORSOrigins     string        `env:"CORS_ORIGINS" envDefault:"*"`
	SeedUserPhone   string        `env:"SEED_USER_PHONE"`
	SeedUserCountry string        `env:"SEED_USER_COUNTRY"`
	APIBaseURL      string        `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.SessionTTLHours <= 0 {
		cfg.SessionTTLHours = 24
	}
	return &cfg, nil
}
