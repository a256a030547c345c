package scheduling

import "errors"

var (
	// ErrInvalidRange is returned when a generation range ends before it starts.
	ErrInvalidRange = errors.New("date range end is before start")

	// ErrNotFound is wrapped around unresolved business/staff/service ids.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a single violated scheduling invariant, e.g. a
// manual slot outside its shift window. The reason is safe to show to callers.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
