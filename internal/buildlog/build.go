package buildlog

import (
	"strings"
	"time"
)

// Build identifies one finished build and locates its console log. It is
// supplied by the host for the duration of a single shipping attempt and is
// never persisted by logship.
type Build struct {
	ID        string
	Job       string
	LogPath   string
	StartedAt time.Time
}

// DisplayName returns a human-readable label for log lines and notifications.
func (b *Build) DisplayName() string {
	job := strings.TrimSpace(b.Job)
	id := strings.TrimSpace(b.ID)
	switch {
	case job != "" && id != "":
		return job + " #" + id
	case job != "":
		return job
	case id != "":
		return "#" + id
	default:
		return "(unnamed build)"
	}
}
