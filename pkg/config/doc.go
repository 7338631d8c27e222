// Package config loads typed configuration structs from environment
// variables. A .env file in the working directory is loaded once, on
// first use, and silently skipped when absent.
//
// Configuration structs declare their variables with `env` field tags:
//
//	type TransportConfig struct {
//		Addr         string        `env:"LOGTAP_ADDR" envDefault:"127.0.0.1:0"`
//		ProbeTimeout time.Duration `env:"LOGTAP_PROBE_TIMEOUT" envDefault:"2s"`
//	}
//
//	var cfg TransportConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
//
// MustLoad panics on failure and is intended for configuration the
// process cannot start without.
package config
