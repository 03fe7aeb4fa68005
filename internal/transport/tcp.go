package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"time"

	"logship/internal/buildlog"
	"logship/internal/config"
	"logship/internal/logging"
)

// tcpWriter ships one JSON event per console line over a plain TCP
// connection. It is built for a single shipping attempt: the connection is
// dialed at construction and closed when the attempt finishes.
type tcpWriter struct {
	build        *buildlog.Build
	conn         net.Conn
	writeTimeout time.Duration
	logger       *slog.Logger

	broken  bool
	lastErr error
}

func newTCPWriter(ctx context.Context, cfg *config.Config, build *buildlog.Build, logger *slog.Logger) (*tcpWriter, error) {
	dialer := net.Dialer{Timeout: cfg.Transport.ConnectTimeoutDuration()}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Transport.Endpoint)
	if err != nil {
		return &tcpWriter{build: build, logger: logger, broken: true, lastErr: err}, err
	}
	return &tcpWriter{
		build:        build,
		conn:         conn,
		writeTimeout: cfg.Transport.WriteTimeoutDuration(),
		logger:       logger,
	}, nil
}

func (w *tcpWriter) ConnectionBroken() bool {
	return w.broken
}

func (w *tcpWriter) WriteBuildLog(maxLines int) {
	if w.conn == nil {
		// Construction never reached the transport; the attempt stays a no-op
		// and the broken flag already reflects it.
		return
	}

	lines, err := buildlog.Read(w.build.LogPath, maxLines)
	if err != nil {
		w.fail(err)
		return
	}

	encoder := json.NewEncoder(w.conn)
	for _, line := range lines {
		if w.writeTimeout > 0 {
			if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
				w.fail(err)
				return
			}
		}
		if err := encoder.Encode(newEvent(w.build, line)); err != nil {
			w.fail(err)
			return
		}
	}

	w.logger.Debug("tcp events written",
		logging.String(logging.FieldBuildID, w.build.ID),
		logging.Int("lines", len(lines)),
	)
}

func (w *tcpWriter) LastError() error { return w.lastErr }

func (w *tcpWriter) Close() error {
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}

func (w *tcpWriter) fail(err error) {
	w.broken = true
	w.lastErr = err
	w.logger.Debug("tcp write failed", logging.Error(err))
}
