// Package apperr defines the coded errors returned by the messaging pipeline
// and mapped to HTTP statuses by the API layer.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

// Forbidden reasons.
const (
	ReasonNotParticipant = "not_participant"
	ReasonBanned         = "banned"
	ReasonMuted          = "muted"
)

type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	// Reason is a short machine or human readable detail shown to the caller.
	Reason string `json:"reason,omitempty"`
	// Until is set for time-boxed restrictions.
	Until *time.Time `json:"until,omitempty"`
	// Flags carries violation type tags for blocked content.
	Flags []string `json:"flags,omitempty"`
	Cause error    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Constructors
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func InvalidInput(msg string) *AppError {
	return New(CodeInvalidInput, msg)
}

func Unauthorized(msg string) *AppError {
	return New(CodeUnauthorized, msg)
}

func NotFound(msg string) *AppError {
	return New(CodeNotFound, msg)
}

func Forbidden(msg, reason string) *AppError {
	e := New(CodeForbidden, msg)
	e.Reason = reason
	return e
}

// Muted is a Forbidden error for a sender restricted until the given time.
func Muted(until *time.Time) *AppError {
	e := Forbidden("you are temporarily muted", ReasonMuted)
	e.Until = until
	return e
}

func Banned() *AppError {
	return Forbidden("you are banned from sending messages", ReasonBanned)
}

func Inactive(msg string) *AppError {
	return New(CodeInactive, msg)
}

// Blocked reports content rejected by the classifier. Only the flag types and the
// most severe flag's reason are exposed.
func Blocked(reason string, flagTypes []string) *AppError {
	e := New(CodeBlocked, "message blocked by content filter")
	e.Reason = reason
	e.Flags = flagTypes
	return e
}

func Storage(msg string, cause error) *AppError {
	return Wrap(CodeStorage, msg, cause)
}

func Notification(msg string, cause error) *AppError {
	return Wrap(CodeNotification, msg, cause)
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or CodeUnknown for foreign errors.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeUnknown
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
