package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a standardized error code for cubedock
type ErrorCode string

// Error codes for cubedock
const (
	// Image Errors
	ErrorCodeImageNotFound ErrorCode = "IMAGE_NOT_FOUND"

	// Build Errors
	ErrorCodeBuildFailed       ErrorCode = "BUILD_FAILED"
	ErrorCodeBuildInconsistent ErrorCode = "BUILD_OUTCOME_INCONSISTENT"
	ErrorCodeProtocolDecode    ErrorCode = "PROTOCOL_DECODE_FAILED"

	// Run Errors
	ErrorCodeContainerFailed ErrorCode = "CONTAINER_EXECUTION_FAILED"

	// Config Errors
	ErrorCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// Error messages map
var errorMessages = map[ErrorCode]string{
	ErrorCodeImageNotFound:     "Image not found in the engine.",
	ErrorCodeBuildFailed:       "Docker build failed.",
	ErrorCodeBuildInconsistent: "Build reported success but the image identifier could not be resolved.",
	ErrorCodeProtocolDecode:    "Malformed record in the engine's build stream.",
	ErrorCodeContainerFailed:   "Container exited with a non-zero status.",
	ErrorCodeConfigInvalid:     "Configuration is missing or invalid.",
}

// Error represents a structured error with code and message
type Error struct {
	Code    ErrorCode
	Message string
	Details string // Additional context for debugging
	Err     error  // Original error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error with the given code
func New(code ErrorCode, details ...string) *Error {
	msg, ok := errorMessages[code]
	if !ok {
		msg = "An unknown error occurred."
	}

	err := &Error{
		Code:    code,
		Message: msg,
	}

	if len(details) > 0 {
		err.Details = strings.Join(details, ": ")
	}

	return err
}

// Wrap wraps an existing error with an Error code
func Wrap(code ErrorCode, err error, details ...string) *Error {
	wrapped := New(code, details...)
	wrapped.Err = err
	if err != nil {
		if wrapped.Details == "" {
			wrapped.Details = err.Error()
		} else {
			wrapped.Details = fmt.Sprintf("%s: %s", wrapped.Details, err.Error())
		}
	}
	return wrapped
}

// HasCode reports whether err or any error in its chain carries the given code
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}
