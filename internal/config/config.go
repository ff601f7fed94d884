package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Kopilka"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"kopilka"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Redis struct {
		// Empty address disables the report cache.
		Addr string `envconfig:"REDIS_ADDR" default:""`
	}

	Recognizer struct {
		Model   string        `envconfig:"RECOGNIZER_MODEL" default:"gemini-2.5-flash"`
		Timeout time.Duration `envconfig:"RECOGNIZER_TIMEOUT" default:"30s"`
	}

	Upload struct {
		Dir          string `envconfig:"UPLOAD_DIR" default:"uploads"`
		MaxSizeBytes int64  `envconfig:"UPLOAD_MAX_SIZE" default:"10485760"`
		MaxBatch     int    `envconfig:"UPLOAD_MAX_BATCH" default:"10"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
