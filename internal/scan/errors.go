package scan

import (
	"fmt"
)

// Kind classifies a scan rejection. Everything except KindStorage is detected
// before any mutation and carries no side effects.
type Kind string

const (
	KindMalformedPayload    Kind = "malformed_payload"
	KindMemberNotFound      Kind = "member_not_found"
	KindFieldMismatch       Kind = "field_mismatch"
	KindEventNotFound       Kind = "event_not_found"
	KindEventInactive       Kind = "event_inactive"
	KindDivisionNotAdmitted Kind = "division_not_admitted"
	KindDuplicateAttendance Kind = "duplicate_attendance"
	KindStorage             Kind = "storage_failure"
)

// Error is a structured scan rejection. Division-admission failures carry the
// member's resolved division and the full allowed list so the scanning device
// can show why.
type Error struct {
	Kind             Kind
	Message          string
	Divisi           string
	AllowedDivisions []string
	Err              error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func storageError(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}
