package transport

import (
	"context"
	"fmt"
	"log/slog"

	"logship/internal/buildlog"
	"logship/internal/config"
	"logship/internal/logging"
	"logship/internal/shipper"
)

// NewFactory returns a shipper.Factory that builds the configured writer
// kind. Construction failures never propagate as errors: the factory returns
// a broken writer plus the diagnostic line the shipping step puts on the
// build console.
func NewFactory(cfg *config.Config, logger *slog.Logger) shipper.Factory {
	logger = logging.NewComponentLogger(logger, "transport")

	return func(ctx context.Context, build *buildlog.Build) (shipper.Writer, string) {
		writer, err := newWriter(ctx, cfg, build, logger)
		if err != nil {
			logger.Warn("log transport unreachable at construction",
				logging.String(logging.FieldTransport, cfg.Transport.Kind),
				logging.String(logging.FieldBuildID, build.ID),
				logging.Error(err),
			)
			return writer, fmt.Sprintf("[logship] unable to reach log transport at %s: %v", cfg.Transport.Endpoint, err)
		}
		return writer, ""
	}
}

func newWriter(ctx context.Context, cfg *config.Config, build *buildlog.Build, logger *slog.Logger) (shipper.Writer, error) {
	switch cfg.Transport.Kind {
	case "http":
		return newHTTPWriter(ctx, cfg, build, logger)
	default:
		return newTCPWriter(ctx, cfg, build, logger)
	}
}
