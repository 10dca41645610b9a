package diag

import (
	"errors"
	"fmt"

	"loom/internal/source"
)

// SyntaxError is the single error kind produced while lowering. The first one
// raised aborts the whole compilation unit.
type SyntaxError struct {
	Code     Code
	Location source.Location
	Message  string
}

// Errorf builds a *SyntaxError with a formatted message.
func Errorf(code Code, loc source.Location, format string, args ...any) *SyntaxError {
	return &SyntaxError{Code: code, Location: loc, Message: fmt.Sprintf(format, args...)}
}

func (e *SyntaxError) Error() string {
	if e.Location.IsZero() {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// Kind is the name printed in front of the message by diagnostic sinks.
func (e *SyntaxError) Kind() string { return "SyntaxError" }

// Diagnostic converts the error into the bag representation.
func (e *SyntaxError) Diagnostic() Diagnostic {
	return New(SevError, e.Code, e.Location, e.Message)
}

// AsSyntaxError unwraps err looking for a *SyntaxError.
func AsSyntaxError(err error) (*SyntaxError, bool) {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
