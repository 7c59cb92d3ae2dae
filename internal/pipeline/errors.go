package pipeline

import (
	"errors"
	"fmt"
)

// Class groups launcher failures. Every class is terminal: nothing is retried.
type Class int

const (
	// ConfigurationError covers bad inputs: missing script, unusable output path, invalid
	// settings, a script generated for another timeline.
	ConfigurationError Class = iota
	// EnvironmentError covers a missing external executable.
	EnvironmentError
	// ExecutionError covers the external process failing.
	ExecutionError
)

func (c Class) String() string {
	switch c {
	case ConfigurationError:
		return "configuration error"
	case EnvironmentError:
		return "environment error"
	case ExecutionError:
		return "execution error"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Failure reasons. Use errors.Is against these to tell launcher errors apart.
var (
	ErrMissingInputScript    = errors.New("input script not found")
	ErrBadOutputPath         = errors.New("bad output path")
	ErrInvalidRenderSettings = errors.New("invalid render settings")
	ErrTimelineMismatch      = errors.New("script was generated for a different timeline")
	ErrExecutableNotFound    = errors.New("executable not found")
	ErrRenderProcessFailed   = errors.New("render process returned a non-zero exit code")
)

// Error is a classified launcher failure.
type Error struct {
	Class  Class
	Reason error
	// Path is the file the failure is about (script, output path or executable), if any.
	Path string
	// ExitCode is the external process exit code for RenderProcessFailed, otherwise 0.
	ExitCode int
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Class.String() + ": " + e.Reason.Error()
	if e.Path != "" {
		msg += fmt.Sprintf(" at %q", e.Path)
	}
	if e.Reason == ErrRenderProcessFailed {
		msg += fmt.Sprintf(" (exit code %d)", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the reason sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

func configError(reason error, path string, err error) *Error {
	return &Error{Class: ConfigurationError, Reason: reason, Path: path, Err: err}
}

// ExitCode is the process exit status the CLI uses for err: 0 for nil, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
