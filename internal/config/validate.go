package config

import (
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateShipping(); err != nil {
		return err
	}
	if err := c.validateTransport(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateShipping() error {
	if c.Shipping.MaxLines < -1 {
		return fmt.Errorf("shipping.max_lines: %d is not a valid line limit (-1 ships the entire log)", c.Shipping.MaxLines)
	}
	return nil
}

func (c *Config) validateTransport() error {
	switch c.Transport.Kind {
	case "tcp":
		if c.Transport.Endpoint == "" {
			return fmt.Errorf("transport.endpoint is required for kind %q", c.Transport.Kind)
		}
	case "http":
		if c.Transport.Endpoint == "" {
			return fmt.Errorf("transport.endpoint is required for kind %q", c.Transport.Kind)
		}
		parsed, err := url.Parse(c.Transport.Endpoint)
		if err != nil {
			return fmt.Errorf("transport.endpoint: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("transport.endpoint: unsupported scheme %q", parsed.Scheme)
		}
	default:
		return fmt.Errorf("transport.kind: unsupported value %q", c.Transport.Kind)
	}
	return nil
}
