package transport

import (
	"os"
	"time"

	"github.com/google/uuid"

	"logship/internal/buildlog"
)

// event is the JSON record shipped for each captured console line. The wire
// format mirrors the usual log-pipeline shape: a timestamp, a message, and
// enough build identity to group lines downstream.
type event struct {
	Timestamp string `json:"@timestamp"`
	EventID   string `json:"event_id"`
	BuildID   string `json:"build_id"`
	Job       string `json:"job"`
	Host      string `json:"host"`
	Message   string `json:"message"`
}

// payload is the bulk body used by the HTTP writer: one record for the whole
// build, lines batched together. A zero-line payload is still a valid
// metadata-only record.
type payload struct {
	Timestamp string   `json:"@timestamp"`
	EventID   string   `json:"event_id"`
	BuildID   string   `json:"build_id"`
	Job       string   `json:"job"`
	Host      string   `json:"host"`
	Lines     []string `json:"lines"`
}

func newEvent(build *buildlog.Build, line string) event {
	return event{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		EventID:   uuid.NewString(),
		BuildID:   build.ID,
		Job:       build.Job,
		Host:      hostname(),
		Message:   line,
	}
}

func newPayload(build *buildlog.Build, lines []string) payload {
	if lines == nil {
		lines = []string{}
	}
	return payload{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		EventID:   uuid.NewString(),
		BuildID:   build.ID,
		Job:       build.Job,
		Host:      hostname(),
		Lines:     lines,
	}
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
