// Package errors provides error handling for dex.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints (the "suggestion" attached to every rejection)
//
// On top of that it declares the sentinel errors of the task engine taxonomy.
// Rejections are built by marking a descriptive error with one of the sentinels
// and attaching a hint:
//
//	err := errors.Newf("priority limit reached for %s", tier)
//	err = errors.Mark(err, errors.ErrLimitExceeded)
//	return errors.WithHint(err, "complete or deprioritize tasks before adding more")
//
// Callers classify with errors.Is and read the suggestion with errors.Hint.
package errors

import (
	"strings"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	FlattenHints  = crdb.FlattenHints
)

// Sentinels of the engine taxonomy. Each maps to one reason code.
var (
	// ErrInvalidRequest: unknown pillar/priority/status or a missing parameter.
	// Always raised before any write.
	ErrInvalidRequest = New("invalid request")

	// ErrVague: the task title is too vague to be admitted.
	ErrVague = New("vague")

	// ErrDuplicate: the title is too similar to an active task.
	ErrDuplicate = New("duplicate")

	// ErrLimitExceeded: the WIP ceiling of a priority tier is reached.
	ErrLimitExceeded = New("limit exceeded")

	// ErrNotFound: an anchor, task or page path does not resolve to any file.
	ErrNotFound = New("not found")

	// ErrConflict: the target already exists (e.g. a company page).
	ErrConflict = New("resource conflict")

	// ErrIO: a document could not be read or written.
	ErrIO = New("io failure")
)

// Reason codes returned to callers in structured failures.
const (
	ReasonInvalidRequest = "invalid_request"
	ReasonVague          = "vague"
	ReasonDuplicate      = "duplicate"
	ReasonLimitExceeded  = "limit_exceeded"
	ReasonNotFound       = "not_found"
	ReasonConflict       = "conflict"
	ReasonIO             = "io_error"
	ReasonInternal       = "internal"
)

// Reason maps an error to its machine-usable reason code.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrInvalidRequest):
		return ReasonInvalidRequest
	case Is(err, ErrVague):
		return ReasonVague
	case Is(err, ErrDuplicate):
		return ReasonDuplicate
	case Is(err, ErrLimitExceeded):
		return ReasonLimitExceeded
	case Is(err, ErrNotFound):
		return ReasonNotFound
	case Is(err, ErrConflict):
		return ReasonConflict
	case Is(err, ErrIO):
		return ReasonIO
	default:
		return ReasonInternal
	}
}

// Hint returns all hints attached to err joined into one suggestion.
func Hint(err error) string {
	if err == nil {
		return ""
	}
	return strings.Join(GetAllHints(err), "\n")
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrNotFound)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidRequest)
}

// WrapIO marks err as an IO failure on path.
func WrapIO(err error, path string) error {
	if err == nil {
		return nil
	}
	return Mark(Wrapf(err, "%s", path), ErrIO)
}
