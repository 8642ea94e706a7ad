package data

import (
	"errors"
	"time"
)

// Task represents one in-flight or recently completed fetch request. The
// registry owns the canonical copy; everyone else works on Clone snapshots.
type Task struct {
	ID         string     `json:"taskId"`
	Source     string     `json:"source"`
	Status     TaskStatus `json:"status"`
	Percentage float64    `json:"percentage"`
	Downloaded string     `json:"downloaded,omitempty"`
	Total      string     `json:"total,omitempty"`
	Speed      string     `json:"speed,omitempty"`
	Filename   string     `json:"filename,omitempty"`
	Message    string     `json:"message,omitempty"`
	ErrorCause string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	DoneAt     time.Time  `json:"-"`
}

type TaskStatus string

const (
	StatusPending  TaskStatus = "Pending"
	StatusRunning  TaskStatus = "Running"
	StatusFinished TaskStatus = "Finished"
	StatusFailed   TaskStatus = "Failed"
)

// Terminal reports whether no further transitions can occur.
func (s TaskStatus) Terminal() bool {
	return s == StatusFinished || s == StatusFailed
}

var (
	ErrNotFound      = errors.New("task not found")
	ErrInvalidSource = errors.New("invalid source URL")
	ErrBusy          = errors.New("task still running")
)

// Clone returns a copy safe to hand to concurrent readers.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
