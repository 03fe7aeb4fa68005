package history

import "time"

// Attempt is one recorded shipping attempt. A row is written per invocation
// of the shipping step whether or not the transport was healthy.
type Attempt struct {
	ID          string
	BuildID     string
	Job         string
	Transport   string
	MaxLines    int
	Broken      bool
	Outcome     bool
	ErrorDetail string
	CreatedAt   time.Time
}

// Stats aggregates the journal by outcome.
type Stats struct {
	Succeeded int
	Failed    int
}

// Total returns the number of recorded attempts.
func (s Stats) Total() int {
	return s.Succeeded + s.Failed
}
