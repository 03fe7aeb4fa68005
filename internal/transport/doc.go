// Package transport provides the concrete shipper.Writer implementations.
//
// Two kinds exist: a tcp writer that streams one JSON event per console line,
// and an http writer that posts a single bulk payload. Both are one-shot
// objects bound to a single build: construction dials (or probes) the
// endpoint, write failures flip the broken flag instead of returning errors,
// and connection health is only observable through ConnectionBroken. Retry
// and buffering deliberately do not live here.
package transport
