// Package config fills configuration structs from the environment using
// caarlos0/env struct tags. A .env file in the working directory is loaded
// once before the first parse, when present.
//
//	var cfg server.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Load parses each struct type once and hands out copies of the cached
// value afterwards, so packages can load the same type independently without
// re-reading the environment. Reset clears the cache.
//
// Nested structs are parsed in place, which lets an application aggregate
// the configs of the packages it wires:
//
//	type Config struct {
//		Server    server.Config
//		Log       logger.Config
//		RateLimit ratelimiter.Config
//	}
//
// MustLoad panics instead of returning an error and is meant for startup.
// LoadFrom parses from an explicit map, bypassing both the process
// environment and the cache:
//
//	err := config.LoadFrom(&cfg, map[string]string{"SERVER_ADDR": ":9000"})
package config
