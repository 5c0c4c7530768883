package boltdb

import (
	"time"

	"go.llib.dev/frameless/pkg/env"
)

// Config is the environment based configuration of a Store.
type Config struct {
	Path        string        `env:"GROUPKIT_BOLT_PATH" required:"true"`
	Bucket      string        `env:"GROUPKIT_BOLT_BUCKET" default:"records"`
	OpenTimeout time.Duration `env:"GROUPKIT_BOLT_OPEN_TIMEOUT" default:"1s"`
}

func LoadConfig() (Config, error) {
	var c Config
	if err := env.Load(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
