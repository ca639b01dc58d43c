package engine

import (
	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/tasks"
	"github.com/teranos/dex/tasks/dedup"
)

// Rejection is the structured failure of an operation. Every error an
// operation returns is a *Rejection.
type Rejection struct {
	Code       string      `json:"error"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`

	cause error
}

func (r *Rejection) Error() string { return r.Message }

// Unwrap exposes the classified cause, so errors.Is(err, errors.ErrDuplicate) works
func (r *Rejection) Unwrap() error { return r.cause }

// VagueDetails accompanies a "vague" rejection
type VagueDetails struct {
	Title     string   `json:"title"`
	Questions []string `json:"clarification_needed"`
}

// DuplicateDetails accompanies a "duplicate" rejection
type DuplicateDetails struct {
	Title             string        `json:"title"`
	Similar           []dedup.Match `json:"similar_tasks"`
	RecommendedAction string        `json:"recommended_action"`
}

// LimitDetails accompanies a "limit_exceeded" rejection
type LimitDetails struct {
	Priority     tasks.Priority `json:"priority"`
	CurrentCount int            `json:"current_count"`
	Limit        int            `json:"limit"`
}

// reject turns err into a *Rejection. A nil err stays nil and an existing
// Rejection is returned as is.
func reject(err error, details interface{}) error {
	if err == nil {
		return nil
	}
	var r *Rejection
	if errors.As(err, &r) {
		return r
	}
	return &Rejection{
		Code:       errors.Reason(err),
		Message:    err.Error(),
		Suggestion: errors.Hint(err),
		Details:    details,
		cause:      err,
	}
}

// AsRejection returns the Rejection carried by err, building an "internal"
// one for errors that did not come from an operation.
func AsRejection(err error) *Rejection {
	if err == nil {
		return nil
	}
	var r *Rejection
	if errors.As(err, &r) {
		return r
	}
	return reject(err, nil).(*Rejection)
}
