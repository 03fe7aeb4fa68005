// Package config loads, normalizes, and validates logship configuration.
//
// Configuration is TOML with repository defaults applied before the file is
// parsed, so a missing or partial file always yields a usable Config.
// Malformed values (an impossible line limit, an unknown transport kind) are
// rejected here at load time; downstream code can assume a validated Config.
package config
