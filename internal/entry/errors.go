package entry

import "fmt"

// InvalidTypeError reports a form type outside the closed set. It signals a
// broken link or caller bug rather than an empty state.
type InvalidTypeError struct {
	Value string
}

func (e *InvalidTypeError) Error() string {
	if e.Value == "" {
		return "no valid history type specified"
	}
	return fmt.Sprintf("invalid history type %q", e.Value)
}

// NotFoundError means no entry exists for (type, user, day). Callers render a
// blank form instead of an error.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("couldn't find entry %s", e.ID)
}

// WriteError wraps a backend failure during submission. The payload is kept by
// the caller so the user can retry.
type WriteError struct {
	ID  string
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write entry %s: %v", e.ID, e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }

// InvalidDateError is returned for an unparseable date navigation parameter.
type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string { return fmt.Sprintf("invalid date %q", e.Value) }
