package session

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a failed editing operation. Every kind is recoverable;
// callers render the message and let the user retry.
type ErrorKind string

const (
	KindNoMediaLoaded        ErrorKind = "NoMediaLoaded"
	KindOutOfRange           ErrorKind = "OutOfRange"
	KindInvalidRotation      ErrorKind = "InvalidRotation"
	KindInvalidAxis          ErrorKind = "InvalidAxis"
	KindAdjustmentNotApplied ErrorKind = "AdjustmentNotApplied"
	KindAdjustmentUnknown    ErrorKind = "AdjustmentUnknown"
	KindPresetNotFound       ErrorKind = "PresetNotFound"
	KindExportFailure        ErrorKind = "ExportFailure"
	KindExportInProgress     ErrorKind = "ExportInProgress"
	KindDuplicateSplit       ErrorKind = "DuplicateSplit"
	KindUnrecognizedCommand  ErrorKind = "UnrecognizedCommand"
	KindInvalidMedia         ErrorKind = "InvalidMedia"
)

// Error is a user-facing editing failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds a stack-annotated *Error.
func NewError(kind ErrorKind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// KindOf returns the ErrorKind carried by err, or "" when err is not an
// editing failure.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
