package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a conversion job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{StatusPending, StatusRunning, StatusSucceeded, StatusFailed}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// Job represents one tracked source video.
type Job struct {
	ID            string     `json:"id"`
	SourcePath    string     `json:"source_path"`
	SourceName    string     `json:"source_name"`
	SourceMtime   time.Time  `json:"source_mtime"`
	Destination   string     `json:"destination"`
	Status        Status     `json:"status"`
	Attempts      int        `json:"attempts"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Ready reports whether a pending job may start at now, honoring backoff.
func (j *Job) Ready(now time.Time) bool {
	if j.Status != StatusPending {
		return false
	}
	return j.NextAttemptAt == nil || !now.Before(*j.NextAttemptAt)
}

// Summary aggregates job counts per lifecycle state.
type Summary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
