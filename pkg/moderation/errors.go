package moderation

import (
	"errors"
	"fmt"
)

// Code classifies moderation failures so callers can branch on the outcome
// instead of parsing messages. Precondition violations (AlreadyMuted,
// NotMuted, NoWarns) are expected outcomes, not crashes.
type Code string

const (
	CodeInvalidArgument       Code = "INVALID_ARGUMENT"
	CodeAlreadyMuted          Code = "ALREADY_MUTED"
	CodeNotMuted              Code = "NOT_MUTED"
	CodeNoWarns               Code = "NO_WARNS"
	CodeNoMuteRole            Code = "NO_MUTE_ROLE"
	CodeMissingRoleAssignment Code = "MISSING_ROLE_ASSIGNMENT"
	CodeRoleGrantFailed       Code = "ROLE_GRANT_FAILED"
	CodeKickFailed            Code = "KICK_FAILED"
)

// ModError is the typed failure every moderation operation returns.
// Op names the failing call site (e.g. "MuteManager#Create").
type ModError struct {
	Code Code
	Op   string
	Msg  string
	Err  error
}

func (e *ModError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Op, e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Op, e.Code, e.Msg)
}

func (e *ModError) Unwrap() error {
	return e.Err
}

func newError(code Code, op, format string, args ...interface{}) *ModError {
	return &ModError{Code: code, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, op string, err error, format string, args ...interface{}) *ModError {
	return &ModError{Code: code, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

// invalidArgument builds the InvalidArgument error naming the offending
// parameter and the call site, per the facade's validation contract
func invalidArgument(op, param string) *ModError {
	return newError(CodeInvalidArgument, op, "missing or invalid %q", param)
}

// CodeOf extracts the moderation code from err, or "" for foreign errors
func CodeOf(err error) Code {
	var me *ModError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

// IsCode reports whether err carries the given moderation code
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
