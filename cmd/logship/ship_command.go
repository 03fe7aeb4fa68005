package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"logship/internal/buildlog"
	"logship/internal/config"
	"logship/internal/history"
	"logship/internal/logging"
	"logship/internal/shipper"
	"logship/internal/transport"
)

// errShippingFailed is returned when the step's outcome marks the build
// failed; main turns it into a non-zero exit for the CI host.
var errShippingFailed = errors.New("build log shipping failed")

func newShipCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		buildID          string
		job              string
		logFile          string
		maxLines         int
		failBuildOnError bool
	)

	cmd := &cobra.Command{
		Use:   "ship",
		Short: "Ship one finished build's console log",
		Long: `Ship captures the finished build's console log and hands it to the
configured transport. Transport failures are reported on stderr (the build
console); the exit code reflects fail_build_on_error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			shipCfg := shipper.Config{
				MaxLines:         cfg.Shipping.MaxLines,
				FailBuildOnError: cfg.Shipping.FailBuildOnError,
			}
			if cmd.Flags().Changed("max-lines") {
				if maxLines < -1 {
					return errors.New("--max-lines must be -1, 0, or a positive count")
				}
				shipCfg.MaxLines = maxLines
			}
			if cmd.Flags().Changed("fail-build-on-error") {
				shipCfg.FailBuildOnError = failBuildOnError
			}

			logPath, err := config.ExpandPath(logFile)
			if err != nil {
				return fmt.Errorf("resolve log file: %w", err)
			}

			build := &buildlog.Build{
				ID:        buildID,
				Job:       job,
				LogPath:   logPath,
				StartedAt: time.Now().UTC(),
			}

			// Keep a handle on the constructed writer so the attempt journal
			// can record transport health after the step finishes.
			var lastWriter shipper.Writer
			inner := transport.NewFactory(cfg, logger)
			factory := func(ctx context.Context, b *buildlog.Build) (shipper.Writer, string) {
				writer, diagnostic := inner(ctx, b)
				lastWriter = writer
				return writer, diagnostic
			}

			step := shipper.New(shipCfg, factory, logger)
			outcome := step.Perform(cmd.Context(), build, cmd.ErrOrStderr())

			recordAttempt(cmd.Context(), cmdCtx, build, shipCfg, lastWriter, outcome)

			if !outcome {
				return errShippingFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&buildID, "build-id", "", "Identifier of the finished build")
	cmd.Flags().StringVar(&job, "job", "", "Job or pipeline name")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Path to the build console log")
	cmd.Flags().IntVar(&maxLines, "max-lines", 0, "Override configured line limit (-1 all, 0 none, N>0 last N)")
	cmd.Flags().BoolVar(&failBuildOnError, "fail-build-on-error", false, "Override configured fail_build_on_error")
	_ = cmd.MarkFlagRequired("build-id")
	_ = cmd.MarkFlagRequired("log-file")

	return cmd
}

// recordAttempt journals the attempt best-effort; bookkeeping never changes
// the shipping outcome.
func recordAttempt(ctx context.Context, cmdCtx *commandContext, build *buildlog.Build, shipCfg shipper.Config, writer shipper.Writer, outcome bool) {
	cfg := cmdCtx.cfg
	if cfg == nil || !cfg.History.Enabled {
		return
	}
	logger := cmdCtx.logger
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := history.Open(ctx, cfg)
	if err != nil {
		logger.Warn("history journal unavailable; attempt not recorded", logging.Error(err))
		return
	}
	defer store.Close()

	attempt := &history.Attempt{
		BuildID:   build.ID,
		Job:       build.Job,
		Transport: cfg.Transport.Kind,
		MaxLines:  shipCfg.MaxLines,
		Outcome:   outcome,
	}
	if writer != nil {
		attempt.Broken = writer.ConnectionBroken()
		if causer, ok := writer.(interface{ LastError() error }); ok {
			if cause := causer.LastError(); cause != nil {
				attempt.ErrorDetail = cause.Error()
			}
		}
	}

	if err := store.RecordAttempt(ctx, attempt); err != nil {
		logger.Warn("failed to record shipping attempt", logging.Error(err))
	}
}
