package status

import (
	"fmt"
	"time"
)

// Status is the checkout state of a file.
type Status string

const (
	// Unlocked means no sentinel and the file is writable.
	Unlocked Status = "unlocked"
	// Locked means no sentinel and the file is read-only (checked in).
	Locked Status = "locked"
	// Out means a sentinel exists; the file is checked out by its owner.
	Out Status = "out"
)

// Parse converts a status string. Unknown values are an error.
func Parse(s string) (Status, error) {
	switch st := Status(s); st {
	case Unlocked, Locked, Out:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// String returns the status name.
func (s Status) String() string { return string(s) }

// UnknownOwner stands in for the owner of a lock file with no owner field.
const UnknownOwner = "unknown user"

// Derive computes the status from the two on-disk signals. The sentinel takes
// precedence over the read-only bit. Owner is empty unless the status is Out,
// and never empty when it is.
func Derive(hasSentinel bool, owner string, readOnly bool) (Status, string) {
	switch {
	case hasSentinel:
		if owner == "" {
			return Out, UnknownOwner
		}
		return Out, owner
	case readOnly:
		return Locked, ""
	default:
		return Unlocked, ""
	}
}

// Record is the cached status of one file.
type Record struct {
	Path       string    `json:"path" yaml:"path"`
	Status     Status    `json:"status" yaml:"status"`
	Owner      string    `json:"owner,omitempty" yaml:"owner,omitempty"`
	Resolved   bool      `json:"resolved" yaml:"resolved"`
	ResolvedAt time.Time `json:"resolved_at,omitzero" yaml:"resolved_at,omitempty"`
}

// Summary counts the outcome of a workspace scan.
type Summary struct {
	Total    int           `json:"total" yaml:"total"`
	Unlocked int           `json:"unlocked" yaml:"unlocked"`
	Locked   int           `json:"locked" yaml:"locked"`
	Out      int           `json:"out" yaml:"out"`
	Failed   int           `json:"failed" yaml:"failed"`
	Evicted  int           `json:"evicted" yaml:"evicted"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

func (s *Summary) add(st Status) {
	switch st {
	case Unlocked:
		s.Unlocked++
	case Locked:
		s.Locked++
	case Out:
		s.Out++
	}
}

// String renders a one-line summary.
func (s Summary) String() string {
	line := fmt.Sprintf("%d files: %d unlocked, %d locked, %d checked out", s.Total, s.Unlocked, s.Locked, s.Out)
	if s.Failed > 0 {
		line += fmt.Sprintf(", %d failed", s.Failed)
	}
	return line
}
