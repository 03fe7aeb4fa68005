package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"logship/internal/buildlog"
	"logship/internal/config"
	"logship/internal/logging"
)

const userAgent = "logship/0.1"

// httpWriter ships the captured lines as a single bulk POST. Like tcpWriter
// it serves exactly one shipping attempt, so holding the construction context
// for the write is safe.
type httpWriter struct {
	ctx      context.Context
	build    *buildlog.Build
	client   *http.Client
	endpoint string
	logger   *slog.Logger

	broken  bool
	lastErr error
}

func newHTTPWriter(ctx context.Context, cfg *config.Config, build *buildlog.Build, logger *slog.Logger) (*httpWriter, error) {
	writer := &httpWriter{
		ctx:      ctx,
		build:    build,
		endpoint: cfg.Transport.Endpoint,
		logger:   logger,
		client:   &http.Client{Timeout: cfg.Transport.WriteTimeoutDuration()},
	}

	// A quick reachability probe so an unreachable endpoint is reported at
	// construction time, matching the tcp writer's behavior.
	if err := probeEndpoint(cfg); err != nil {
		writer.broken = true
		writer.lastErr = err
		return writer, err
	}
	return writer, nil
}

func probeEndpoint(cfg *config.Config) error {
	parsed, err := url.Parse(cfg.Transport.Endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	host := parsed.Host
	if parsed.Port() == "" {
		port := "80"
		if parsed.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(parsed.Hostname(), port)
	}
	conn, err := net.DialTimeout("tcp", host, cfg.Transport.ConnectTimeoutDuration())
	if err != nil {
		return err
	}
	return conn.Close()
}

func (w *httpWriter) ConnectionBroken() bool {
	return w.broken
}

func (w *httpWriter) WriteBuildLog(maxLines int) {
	if w.broken {
		return
	}

	lines, err := buildlog.Read(w.build.LogPath, maxLines)
	if err != nil {
		w.fail(err)
		return
	}

	body, err := json.Marshal(newPayload(w.build, lines))
	if err != nil {
		w.fail(fmt.Errorf("serialize payload: %w", err))
		return
	}

	req, err := http.NewRequestWithContext(w.ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		w.fail(fmt.Errorf("build request: %w", err))
		return
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.fail(err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		w.fail(fmt.Errorf("transport returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))))
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	w.logger.Debug("http payload posted",
		logging.String(logging.FieldBuildID, w.build.ID),
		logging.Int("lines", len(lines)),
	)
}

func (w *httpWriter) LastError() error { return w.lastErr }

func (w *httpWriter) fail(err error) {
	w.broken = true
	w.lastErr = err
	w.logger.Debug("http write failed", logging.Error(err))
}
