package podcast

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a podcast job. Transitions follow
// pending -> running -> script_ready -> done, with error reachable
// from pending and running. Every transition is a conditional update,
// so concurrent status polls always observe a consistent state.
type Status string

const (
	StatusPending     Status = "pending"
	StatusRunning     Status = "running"
	StatusScriptReady Status = "script_ready"
	StatusDone        Status = "done"
	StatusError       Status = "error"
)

// ErrInvalidTransition is returned when a job is not in the expected
// state for the requested transition.
var ErrInvalidTransition = errors.New("invalid job transition")

// ErrQueueFull is returned when the worker queue cannot accept more jobs.
var ErrQueueFull = errors.New("podcast queue is full")

// Job is one podcast generation request.
type Job struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"-"`
	Speakers   int       `json:"speakers"`
	Status     Status    `json:"status"`
	Script     string    `json:"script,omitempty"`
	AudioPath  string    `json:"audio_path,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
