// Package logging assembles the structured slog loggers used across logship.
//
// It owns the console and JSON handlers, centralizes level plumbing, and
// exposes attribute helpers plus a no-op logger so wiring code that cannot
// fail has something safe to hold. Prefer these constructors over hand-rolled
// slog setup so every component emits log lines with the same shape.
package logging
