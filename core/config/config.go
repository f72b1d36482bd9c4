package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParse is returned when the environment cannot be parsed into a config.
var ErrParse = errors.New("failed to parse config from environment")

var (
	dotenvOnce sync.Once
	mu         sync.Mutex
	cache      = map[reflect.Type]any{}
)

// Load fills cfg from the environment. The first call for a type parses the
// environment, after loading .env when present; later calls for the same
// type copy the cached value.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// A missing .env file is the normal production case.
		_ = godotenv.Load()
	})

	t := reflect.TypeFor[T]()

	mu.Lock()
	defer mu.Unlock()

	if v, ok := cache[t]; ok {
		*cfg = v.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return fmt.Errorf("%w: %T: %w", ErrParse, parsed, err)
	}

	cache[t] = parsed
	*cfg = parsed
	return nil
}

// MustLoad is Load that panics on failure, for use during startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// LoadFrom parses cfg from the given variables only, bypassing the process
// environment and the cache.
func LoadFrom[T any](cfg *T, vars map[string]string) error {
	var parsed T
	if err := env.ParseWithOptions(&parsed, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("%w: %T: %w", ErrParse, parsed, err)
	}
	*cfg = parsed
	return nil
}

// Reset drops every cached config so the next Load parses again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	clear(cache)
}
