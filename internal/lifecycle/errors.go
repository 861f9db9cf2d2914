package lifecycle

import (
	"errors"
	"fmt"
)

// Kind classifies transition failures so handlers can map them to
// user-facing responses without string matching.
type Kind string

const (
	KindIllegalTransition      Kind = "ILLEGAL_TRANSITION"
	KindForbidden              Kind = "FORBIDDEN"
	KindMissingRequiredField   Kind = "MISSING_REQUIRED_FIELD"
	KindNotFound               Kind = "NOT_FOUND"
	KindConcurrentModification Kind = "CONCURRENT_MODIFICATION"
	KindStoreUnavailable       Kind = "STORE_UNAVAILABLE"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or "" if err is not a lifecycle error.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
