package receiver

import "time"

// Config holds receiver settings, loadable from the environment via
// pkg/config.
type Config struct {
	// ProbeTimeout bounds the liveness probe against a prior session's
	// remote endpoint during reconnect handling.
	ProbeTimeout time.Duration `env:"LOGTAP_PROBE_TIMEOUT" envDefault:"2s"`
}

// DefaultConfig returns the built-in receiver settings.
func DefaultConfig() Config {
	return Config{ProbeTimeout: 2 * time.Second}
}
