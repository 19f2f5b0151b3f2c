// Package transfer moves files and trees between mounts: local to remote,
// remote to local, or any other pairing the mount registry knows. Transfers
// run as queued jobs on a bounded worker pool and survive transient remote
// failures through classified retries.
package transfer

import (
	"encoding/json"
	"time"
)

// State is a job's lifecycle phase.
type State string

const (
	StateQueued   State = "queued"
	StateRunning  State = "running"
	StateDone     State = "done"
	StateFailed   State = "failed"
	StateCanceled State = "canceled"
)

// Policy decides what happens when the destination already exists.
type Policy int

const (
	// PolicySkip leaves existing destination files untouched.
	PolicySkip Policy = iota
	// PolicyOverwrite always replaces the destination.
	PolicyOverwrite
	// PolicyNewer replaces the destination only when the source is more
	// recently modified.
	PolicyNewer
)

// String returns the lowercase policy name.
func (p Policy) String() string {
	switch p {
	case PolicyOverwrite:
		return "overwrite"
	case PolicyNewer:
		return "newer"
	default:
		return "skip"
	}
}

// MarshalJSON renders the policy by name.
func (p Policy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts a policy name. Unknown names become PolicySkip.
func (p *Policy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = ParsePolicy(s)
	return nil
}

// ParsePolicy maps a policy name to its value. Unknown names fall back to
// PolicySkip, the safe default.
func ParsePolicy(s string) Policy {
	switch s {
	case "overwrite":
		return PolicyOverwrite
	case "newer":
		return PolicyNewer
	default:
		return PolicySkip
	}
}

// Request describes a transfer to enqueue.
type Request struct {
	// Src and Dst are mount addresses, e.g. "file:///data/in" or
	// "s3://bucket/backup".
	Src string
	Dst string

	// Policy controls conflicts at the destination. Default is PolicySkip.
	Policy Policy
}

// Job is a point-in-time snapshot of a transfer.
type Job struct {
	ID     string `json:"id"`
	Src    string `json:"src"`
	Dst    string `json:"dst"`
	Policy Policy `json:"policy"`
	State  State  `json:"state"`

	// Error holds the failure message for StateFailed jobs.
	Error string `json:"error,omitempty"`

	// Progress counters. Valid while running and after completion.
	FilesCopied  int   `json:"files_copied"`
	FilesSkipped int   `json:"files_skipped"`
	BytesCopied  int64 `json:"bytes_copied"`

	CreatedAt  time.Time `json:"created_at"`
	StartedAt  time.Time `json:"started_at,omitzero"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}
