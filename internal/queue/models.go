package queue

import (
	"strings"
	"time"

	"gavel/internal/meeting"
)

// Status represents the lifecycle of an acquisition job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{StatusPending, StatusProcessing, StatusCompleted, StatusFailed}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether no further automatic transition can occur.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one unit of work: the acquisition of a single meeting recording.
type Job struct {
	ID  int64
	Ref meeting.Ref

	Status     Status
	Priority   int
	RetryCount int

	// ResolvedURL and Strategy record which cascade strategy produced the
	// media URL that was ultimately fetched (or last attempted).
	ResolvedURL string
	Strategy    string

	FilePath      string
	FileSize      int64
	AudioPath     string
	TranscodeNote string

	ErrorKind    string
	ErrorMessage string

	// MetadataJSON is an opaque caller-supplied blob the pipeline never
	// inspects.
	MetadataJSON string

	CreatedAt     time.Time
	UpdatedAt     time.Time
	StartedAt     *time.Time
	FinishedAt    *time.Time
	LastHeartbeat *time.Time
}

// Result captures the outcome of a successful acquisition.
type Result struct {
	ResolvedURL   string
	Strategy      string
	FilePath      string
	FileSize      int64
	AudioPath     string
	TranscodeNote string
}

// HealthSummary describes aggregated queue counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}
