package config

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// dotenvOnce loads the default .env file at most once per process. A
// missing file is not an error.
var dotenvOnce sync.Once

// Load parses environment variables into the provided configuration
// struct based on its `env` field tags. The default .env file, if one
// exists in the working directory, is applied to the environment before
// the first parse.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if loading fails. Use it for
// configuration required for startup.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(err)
	}
}
