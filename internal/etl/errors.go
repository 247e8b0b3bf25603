package etl

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned when a job parameter is missing or malformed.
var ErrInvalidParameter = errors.New("invalid job parameter")

// Kind classifies pipeline failures.
type Kind int

const (
	KindAcquisition Kind = iota // download failed
	KindParse                   // malformed input row
	KindWrite                   // database write failed, batch rolled back
)

func (k Kind) String() string {
	switch k {
	case KindAcquisition:
		return "acquisition"
	case KindParse:
		return "parse"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Error is a classified pipeline error wrapping the underlying cause.
type Error struct {
	Kind Kind
	// Line is the 1-based input line for parse errors, 0 otherwise.
	Line int
	err  error
}

func (e *Error) Error() string {
	if e.Kind == KindParse && e.Line > 0 {
		return fmt.Sprintf("%s error at line %d: %v", e.Kind, e.Line, e.err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

func newError(kind Kind, err error) error {
	return &Error{Kind: kind, err: err}
}

// IsKind reports whether err is a pipeline Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
