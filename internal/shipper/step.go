package shipper

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"logship/internal/buildlog"
	"logship/internal/logging"
)

// errorPrefix identifies the shipping subsystem on the build console.
const errorPrefix = "[logship] "

// transmitFailureMessage is appended to the build console when a healthy
// pre-write probe turns broken after the write attempt.
const transmitFailureMessage = errorPrefix + "unable to serialize or transmit build log data"

// Config is the immutable policy for one shipping attempt.
type Config struct {
	// MaxLines: -1 ships the entire log, 0 ships no lines, N>0 the last N.
	MaxLines int
	// FailBuildOnError downgrades a broken transport into a failed outcome.
	// When false the outcome is always success; errors still reach the console.
	FailBuildOnError bool
}

// Step orchestrates one post-build shipping attempt. The Writer factory is
// injected so hosts and tests control transport construction; the step itself
// holds no connection state across invocations.
type Step struct {
	cfg     Config
	factory Factory
	logger  *slog.Logger
}

// New constructs a Step. A nil logger is replaced with a no-op logger.
func New(cfg Config, factory Factory, logger *slog.Logger) *Step {
	return &Step{
		cfg:     cfg,
		factory: factory,
		logger:  logging.NewComponentLogger(logger, "shipper"),
	}
}

// Perform runs exactly one shipping attempt for the given build and returns
// the outcome: true means the build is not marked failed by this step.
//
// The connection is probed before and after the write. The pre-write probe
// never gates the write attempt; its result only feeds the final broken-state
// decision. Transport failures are never raised as errors: they surface as
// console text on errorSink and, when FailBuildOnError is set, as a false
// outcome.
func (s *Step) Perform(ctx context.Context, build *buildlog.Build, errorSink io.Writer) bool {
	writer, diagnostic := s.factory(ctx, build)
	if diagnostic != "" {
		fmt.Fprintln(errorSink, diagnostic)
	}

	preBroken := writer.ConnectionBroken()

	// The write is attempted even when the pre-write probe already reported
	// broken; a zero-line request still reaches the writer.
	writer.WriteBuildLog(s.cfg.MaxLines)

	postBroken := writer.ConnectionBroken()
	broken := preBroken || postBroken

	if postBroken && !preBroken {
		// The failure was discovered only through the write itself, so no
		// construction diagnostic reached the console yet.
		message := transmitFailureMessage
		if causer, ok := writer.(lastErrorer); ok {
			if cause := causer.LastError(); cause != nil {
				message = fmt.Sprintf("%s\n%s%v", message, errorPrefix, cause)
			}
		}
		fmt.Fprintln(errorSink, message)
	}

	if closer, ok := writer.(io.Closer); ok {
		_ = closer.Close()
	}

	if broken {
		s.logger.Warn("transport connection broken during shipping attempt",
			logging.String(logging.FieldBuildID, build.ID),
			logging.String(logging.FieldJob, build.Job),
			logging.Bool("pre_write_broken", preBroken),
			logging.Bool("post_write_broken", postBroken),
			logging.Bool("fail_build", s.cfg.FailBuildOnError),
		)
	} else {
		s.logger.Info("build log shipped",
			logging.String(logging.FieldBuildID, build.ID),
			logging.String(logging.FieldJob, build.Job),
			logging.Int("max_lines", s.cfg.MaxLines),
		)
	}

	return !s.cfg.FailBuildOnError || !broken
}
