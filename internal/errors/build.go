package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BuildError is raised when the engine's build stream reports a failure or
// finishes without a usable image identifier. Events holds the raw progress
// records consumed up to and including the failure, for diagnostics.
type BuildError struct {
	Message string
	Events  []json.RawMessage
}

// Error implements the error interface
func (e *BuildError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ErrorCodeBuildFailed, errorMessages[ErrorCodeBuildFailed], e.Message)
}

// ContainerError is raised when a container run finishes with a non-zero
// exit status. It carries everything the top-level reporter needs.
type ContainerError struct {
	Command    string
	Image      string
	ExitStatus int64
	Stderr     string
}

// Error implements the error interface
func (e *ContainerError) Error() string {
	return fmt.Sprintf("[%s] command %q in image %s exited with status %d",
		ErrorCodeContainerFailed, e.Command, e.Image, e.ExitStatus)
}

// StderrText returns the captured stderr with literal \n escape sequences
// converted to real line breaks for display.
func (e *ContainerError) StderrText() string {
	return strings.ReplaceAll(e.Stderr, `\n`, "\n")
}
