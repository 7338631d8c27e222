package transport

// Config holds transport listener settings, loadable from the
// environment via pkg/config.
type Config struct {
	// Addr is the listen address. Port 0 binds an ephemeral port.
	Addr string `env:"LOGTAP_ADDR" envDefault:"127.0.0.1:0"`

	// MaxLineBytes caps the length of a single log line. Longer lines
	// terminate the producer's connection.
	MaxLineBytes int `env:"LOGTAP_MAX_LINE_BYTES" envDefault:"65536"`
}

// DefaultConfig returns the built-in transport settings: loopback
// ephemeral port, 64 KiB line cap.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:0",
		MaxLineBytes: 64 * 1024,
	}
}
