package shipper_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"logship/internal/buildlog"
	"logship/internal/shipper"
)

// scriptedWriter replays a sequence of connection-health observations so tests
// can model transports that are healthy, broken from construction, or flaky
// only during the write. The last scripted value repeats once the sequence is
// exhausted.
type scriptedWriter struct {
	health     []bool // true = broken, indexed by probe call
	probeCalls int
	writeCalls []int
	onWrite    func(*scriptedWriter)
	lastErr    error
}

func (w *scriptedWriter) ConnectionBroken() bool {
	idx := w.probeCalls
	w.probeCalls++
	if len(w.health) == 0 {
		return false
	}
	if idx >= len(w.health) {
		idx = len(w.health) - 1
	}
	return w.health[idx]
}

func (w *scriptedWriter) WriteBuildLog(maxLines int) {
	w.writeCalls = append(w.writeCalls, maxLines)
	if w.onWrite != nil {
		w.onWrite(w)
	}
}

func (w *scriptedWriter) LastError() error { return w.lastErr }

func factoryFor(w *scriptedWriter, diagnostic string) shipper.Factory {
	return func(context.Context, *buildlog.Build) (shipper.Writer, string) {
		return w, diagnostic
	}
}

func testBuild() *buildlog.Build {
	return &buildlog.Build{ID: "42", Job: "nightly"}
}

func TestPerformSuccess(t *testing.T) {
	writer := &scriptedWriter{}
	step := shipper.New(shipper.Config{MaxLines: 3}, factoryFor(writer, ""), nil)

	var console bytes.Buffer
	if !step.Perform(context.Background(), testBuild(), &console) {
		t.Fatal("healthy shipping attempt should not fail the build")
	}

	if got := console.String(); got != "" {
		t.Fatalf("expected empty console, got %q", got)
	}
	if writer.probeCalls != 2 {
		t.Fatalf("expected exactly 2 probe calls, got %d", writer.probeCalls)
	}
	if len(writer.writeCalls) != 1 || writer.writeCalls[0] != 3 {
		t.Fatalf("expected one write of 3 lines, got %v", writer.writeCalls)
	}
}

func TestPerformBrokenWriterDoesNotFailBuild(t *testing.T) {
	writer := &scriptedWriter{health: []bool{true}}
	diagnostic := "[logship] unable to reach log transport at logstash.example.net:5044"
	step := shipper.New(shipper.Config{MaxLines: 3}, factoryFor(writer, diagnostic), nil)

	var console bytes.Buffer
	if !step.Perform(context.Background(), testBuild(), &console) {
		t.Fatal("outcome must be success when fail_build_on_error is off")
	}

	if got := console.String(); got != diagnostic+"\n" {
		t.Fatalf("expected construction diagnostic exactly once, got %q", got)
	}
	if len(writer.writeCalls) != 1 {
		t.Fatalf("write must be attempted even with a broken pre-write probe, got %v", writer.writeCalls)
	}
}

func TestPerformBrokenWriterFailsBuild(t *testing.T) {
	writer := &scriptedWriter{health: []bool{true}}
	diagnostic := "[logship] unable to reach log transport at logstash.example.net:5044"
	step := shipper.New(shipper.Config{MaxLines: 3, FailBuildOnError: true}, factoryFor(writer, diagnostic), nil)

	var console bytes.Buffer
	if step.Perform(context.Background(), testBuild(), &console) {
		t.Fatal("broken transport with fail_build_on_error must fail the build")
	}

	if writer.probeCalls != 2 {
		t.Fatalf("expected 2 probe calls, got %d", writer.probeCalls)
	}
	if got := console.String(); got != diagnostic+"\n" {
		t.Fatalf("expected only the construction diagnostic, got %q", got)
	}
}

func TestPerformFailureDiscoveredDuringWrite(t *testing.T) {
	// Healthy before the write, healthy during the writer's own internal
	// check, broken afterwards: the flaky-connection scenario.
	writer := &scriptedWriter{health: []bool{false, false, true}}
	writer.onWrite = func(w *scriptedWriter) {
		if !w.ConnectionBroken() {
			w.lastErr = errors.New("unable to read log file")
		}
	}
	step := shipper.New(shipper.Config{MaxLines: 3, FailBuildOnError: true}, factoryFor(writer, ""), nil)

	var console bytes.Buffer
	if step.Perform(context.Background(), testBuild(), &console) {
		t.Fatal("mid-write failure with fail_build_on_error must fail the build")
	}

	if writer.probeCalls != 3 {
		t.Fatalf("expected 3 probe calls (pre, internal, post), got %d", writer.probeCalls)
	}
	got := console.String()
	if !strings.Contains(got, "unable to serialize or transmit build log data") {
		t.Fatalf("missing transmission-failure message in %q", got)
	}
	if !strings.Contains(got, "unable to read log file") {
		t.Fatalf("missing cause detail in %q", got)
	}
}

func TestPerformOutcomeAlwaysTrueWhenFailBuildOff(t *testing.T) {
	scripts := [][]bool{
		{false, false},
		{true, true},
		{false, true},
		{true, false},
	}
	for _, script := range scripts {
		writer := &scriptedWriter{health: script}
		step := shipper.New(shipper.Config{MaxLines: 3}, factoryFor(writer, ""), nil)
		if !step.Perform(context.Background(), testBuild(), &bytes.Buffer{}) {
			t.Fatalf("outcome must be true for script %v when fail_build_on_error is off", script)
		}
	}
}

func TestPerformProbesReadIndependently(t *testing.T) {
	// A transport that recovers after the write still counts as broken for
	// this invocation because the pre-write probe saw it down.
	writer := &scriptedWriter{health: []bool{true, false}}
	step := shipper.New(shipper.Config{MaxLines: 3, FailBuildOnError: true}, factoryFor(writer, "[logship] transport down"), nil)

	if step.Perform(context.Background(), testBuild(), &bytes.Buffer{}) {
		t.Fatal("a broken pre-write probe must fail the build even when the post-write probe recovers")
	}
}

func TestPerformLineLimitPassthrough(t *testing.T) {
	tests := []struct {
		name     string
		maxLines int
	}{
		{"entire log", -1},
		{"zero lines", 0},
		{"last lines", 25},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			writer := &scriptedWriter{}
			step := shipper.New(shipper.Config{MaxLines: tc.maxLines, FailBuildOnError: true}, factoryFor(writer, ""), nil)

			var console bytes.Buffer
			if !step.Perform(context.Background(), testBuild(), &console) {
				t.Fatal("healthy attempt should succeed")
			}
			if len(writer.writeCalls) != 1 || writer.writeCalls[0] != tc.maxLines {
				t.Fatalf("expected write with %d, got %v", tc.maxLines, writer.writeCalls)
			}
			if writer.probeCalls != 2 {
				t.Fatalf("expected 2 probe calls, got %d", writer.probeCalls)
			}
			if console.Len() != 0 {
				t.Fatalf("expected empty console, got %q", console.String())
			}
		})
	}
}

func TestPerformNoTransmitMessageWhenPreProbeBroken(t *testing.T) {
	// Broken at construction and still broken afterwards: the construction
	// diagnostic is the only console output, never the generic message.
	writer := &scriptedWriter{health: []bool{true, true}}
	step := shipper.New(shipper.Config{MaxLines: 3, FailBuildOnError: true}, factoryFor(writer, "[logship] transport down"), nil)

	var console bytes.Buffer
	step.Perform(context.Background(), testBuild(), &console)

	if strings.Contains(console.String(), "unable to serialize or transmit") {
		t.Fatalf("generic message must not appear after a construction diagnostic: %q", console.String())
	}
	if count := strings.Count(console.String(), "[logship] transport down"); count != 1 {
		t.Fatalf("expected construction diagnostic exactly once, got %d in %q", count, console.String())
	}
}
