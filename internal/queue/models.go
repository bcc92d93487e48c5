package queue

import "time"

// Status is the lifecycle of a queued file.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var statusSet = map[Status]struct{}{
	StatusPending:    {},
	StatusProcessing: {},
	StatusCompleted:  {},
	StatusFailed:     {},
}

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// File is one queued transcription input.
type File struct {
	ID           int64
	Path         string
	Status       Status
	Stage        string
	Progress     float64
	ErrorMessage string
	ResultPath   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Terminal reports whether the file has finished processing.
func (f File) Terminal() bool {
	return f.Status == StatusCompleted || f.Status == StatusFailed
}
