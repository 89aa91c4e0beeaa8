package types

import (
	"context"
	"errors"
)

var (
	// ErrSourceUnavailable marks a cascade stage whose source is missing or schema incompatible.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrPermissionDenied marks a stage rejected under the caller's access policy.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrEmptyResult marks a stage that answered with zero usable rows.
	ErrEmptyResult = errors.New("empty result")
	// ErrStale is returned when a retrieval cycle completed after its filter state was replaced.
	ErrStale = errors.New("stale retrieval discarded")

	ErrUnknownContentType = errors.New("unknown content type")
)

// FailureKind classifies a stage error for logging and metrics.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrEmptyResult):
		return "empty"
	case errors.Is(err, ErrSourceUnavailable):
		return "unavailable"
	}
	return "error"
}
