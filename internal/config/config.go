package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port                   string        `env:"PORT" envDefault:"8080"`
	DBDriver               string        `env:"DB_DRIVER" envDefault:"mysql"` // mysql | postgres
	DBUser                 string        `env:"DB_USER,required"`
	DBPassword             string        `env:"DB_PASSWORD,required"`
	DBHost                 string        `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string        `env:"DB_NAME,required"`
	DBPort                 string        `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string        `env:"INSTANCE_CONNECTION_NAME"`
	JWTSecret              string        `env:"JWT_SECRET,required"`
	JWTTTL                 time.Duration `env:"JWT_TTL" envDefault:"168h"`
	RedisAddr              string        `env:"REDIS_ADDR"`
	RedisPassword          string        `env:"REDIS_PASSWORD"`
	RedisDB                int           `env:"REDIS_DB" envDefault:"0"`
	FirebaseProjectID      string        `env:"FIREBASE_PROJECT_ID"`
	Timezone               string        `env:"APP_TIMEZONE" envDefault:"Local"`
	CORSAllowedSuffixes    []string      `env:"CORS_ALLOWED_SUFFIXES" envSeparator:"," envDefault:"vercel.app"`
	GitSHA                 string        `env:"GIT_SHA"`
	BuildTime              string        `env:"BUILD_TIME"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves APP_TIMEZONE. Daily claims reset at midnight in this zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
