package testsupport

import (
	"path/filepath"
	"testing"

	"logship/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// The transport endpoint defaults to a placeholder; tests that actually dial
// should override it with WithEndpoint.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Transport.Endpoint = "127.0.0.1:0"
	cfg.Transport.ConnectTimeout = 1
	cfg.Transport.WriteTimeout = 2

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithEndpoint sets the transport endpoint on the test config.
func WithEndpoint(endpoint string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Transport.Endpoint = endpoint
	}
}

// WithTransportKind sets the transport kind on the test config.
func WithTransportKind(kind string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Transport.Kind = kind
	}
}
