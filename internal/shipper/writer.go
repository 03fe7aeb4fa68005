package shipper

import (
	"context"

	"logship/internal/buildlog"
)

// Writer is the transport-facing collaborator that serializes and ships
// captured build log lines. Implementations never return errors from
// WriteBuildLog; failures are observable only through ConnectionBroken.
type Writer interface {
	// ConnectionBroken reports current transport health. It is cheap, safe to
	// call repeatedly, and may change value between calls when the transport
	// degrades mid-write.
	ConnectionBroken() bool
	// WriteBuildLog attempts to transmit the build's console log: -1 ships
	// every line, 0 ships none (still a valid transmission), N>0 ships the
	// last N lines.
	WriteBuildLog(maxLines int)
}

// Factory produces a Writer bound to one build. When the transport cannot be
// reached at construction time the factory still returns a usable Writer
// (whose probe reports broken) together with a human-readable diagnostic; the
// step forwards the diagnostic to the build console rather than failing.
type Factory func(ctx context.Context, build *buildlog.Build) (Writer, string)

// lastErrorer is an optional Writer capability used for cause detail in the
// step's transmission-failure message.
type lastErrorer interface {
	LastError() error
}
