// Package config loads environment-backed configuration structs.
//
// Every component of the service declares its own Config struct with
// `env` tags and loads it through Load or MustLoad. A .env file in the
// working directory is applied once before the first parse, which keeps
// local development close to the deployed environment.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrNilPointer is returned when Load receives a nil config pointer.
	ErrNilPointer = errors.New("config: nil pointer provided")
	// ErrParsingConfig wraps failures from parsing environment variables.
	ErrParsingConfig = errors.New("config: failed to parse environment variables")
)

var dotenvOnce sync.Once

// Load parses environment variables into the provided struct based on
// its `env` field tags. The default .env file is loaded once per process;
// a missing .env file is not an error.
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	if v == nil {
		return ErrNilPointer
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if loading fails. Use it for
// configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
