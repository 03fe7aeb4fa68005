package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"logship/internal/buildlog"
	"logship/internal/logging"
	"logship/internal/testsupport"
)

func TestHTTPWriterPostsBulkPayload(t *testing.T) {
	var captured payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logPath := filepath.Join(t.TempDir(), "console.log")
	if err := os.WriteFile(logPath, []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatalf("write build log: %v", err)
	}

	cfg := testsupport.NewConfig(t,
		testsupport.WithTransportKind("http"),
		testsupport.WithEndpoint(server.URL),
	)
	build := &buildlog.Build{ID: "12", Job: "release", LogPath: logPath}

	writer, err := newHTTPWriter(context.Background(), cfg, build, logging.NewNop())
	if err != nil {
		t.Fatalf("new http writer: %v", err)
	}
	if writer.ConnectionBroken() {
		t.Fatal("reachable endpoint should not be broken")
	}

	writer.WriteBuildLog(-1)
	if writer.ConnectionBroken() {
		t.Fatalf("write should succeed, got %v", writer.LastError())
	}

	if captured.BuildID != "12" || captured.Job != "release" {
		t.Fatalf("unexpected payload identity: %+v", captured)
	}
	if len(captured.Lines) != 3 || captured.Lines[2] != "three" {
		t.Fatalf("unexpected payload lines: %v", captured.Lines)
	}
}

func TestHTTPWriterZeroLinesStillPosts(t *testing.T) {
	posts := 0
	var captured payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts++
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t,
		testsupport.WithTransportKind("http"),
		testsupport.WithEndpoint(server.URL),
	)
	build := &buildlog.Build{ID: "12", LogPath: filepath.Join(t.TempDir(), "unused.log")}

	writer, err := newHTTPWriter(context.Background(), cfg, build, logging.NewNop())
	if err != nil {
		t.Fatalf("new http writer: %v", err)
	}

	writer.WriteBuildLog(0)
	if writer.ConnectionBroken() {
		t.Fatalf("zero-line write must succeed, got %v", writer.LastError())
	}
	if posts != 1 {
		t.Fatalf("expected exactly one metadata-only post, got %d", posts)
	}
	if captured.Lines == nil || len(captured.Lines) != 0 {
		t.Fatalf("expected empty lines array, got %#v", captured.Lines)
	}
}

func TestHTTPWriterServerErrorBreaksConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	logPath := filepath.Join(t.TempDir(), "console.log")
	if err := os.WriteFile(logPath, []byte("line\n"), 0o644); err != nil {
		t.Fatalf("write build log: %v", err)
	}

	cfg := testsupport.NewConfig(t,
		testsupport.WithTransportKind("http"),
		testsupport.WithEndpoint(server.URL),
	)
	build := &buildlog.Build{ID: "12", LogPath: logPath}

	writer, err := newHTTPWriter(context.Background(), cfg, build, logging.NewNop())
	if err != nil {
		t.Fatalf("new http writer: %v", err)
	}

	writer.WriteBuildLog(-1)
	if !writer.ConnectionBroken() {
		t.Fatal("server error must flip the post-write probe")
	}
	if writer.LastError() == nil {
		t.Fatal("expected cause detail from the failed post")
	}
}

func TestHTTPWriterUnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	cfg := testsupport.NewConfig(t,
		testsupport.WithTransportKind("http"),
		testsupport.WithEndpoint(endpoint),
	)
	build := &buildlog.Build{ID: "12"}

	writer, err := newHTTPWriter(context.Background(), cfg, build, logging.NewNop())
	if err == nil {
		t.Fatal("expected construction error for unreachable endpoint")
	}
	if !writer.ConnectionBroken() {
		t.Fatal("writer from failed construction must report broken")
	}
}
