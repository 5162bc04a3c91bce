// Package check implements the precondition checks of a setup run. The checks
// are meant to run in order, each later check assumes that the earlier ones
// succeeded.
package check

import (
	"errors"
	"fmt"
)

// Exit codes for the failing checks.
const (
	ExitPrivileges   = 1
	ExitEnvironment  = 2
	ExitCertificates = 3
	ExitDependencies = 4
)

var (
	ErrNotElevated      = errors.New("administrator privileges are required")
	ErrInvalidEnv       = errors.New("invalid environment file")
	ErrMissingTemplate  = errors.New("missing template for the environment file")
	ErrCreatedEnv       = errors.New("environment file created, values have to be filled in")
	ErrToolDeclined     = errors.New("installation of the certificate tool declined")
	ErrToolInstall      = errors.New("installation of the certificate tool failed")
	ErrLocalCA          = errors.New("installing the local CA failed")
	ErrCertificates     = errors.New("generating certificates failed")
	ErrMissingManifest  = errors.New("missing dependency manifest")
	ErrMissingRuntime   = errors.New("runtime is not installed")
	ErrDependencies     = errors.New("installing dependencies failed")
	ErrFilesystemAccess = errors.New("filesystem access failed")
)

// Check is a single precondition check.
type Check interface {
	// Name returns the title of the check.
	Name() string

	// Run runs the check. The problems are reported to the user before an
	// error is returned. The returned error is of type *Error.
	Run() error
}

// Error is the error of a failed check. The code is the exit code of the
// process.
type Error struct {
	Check string
	Code  int
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Check, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) ExitCode() int {
	return e.Code
}

func newError(check string, code int, err error) error {
	return &Error{
		Check: check,
		Code:  code,
		Err:   err,
	}
}

// Printer writes the messages of the checks for the user.
type Printer interface {
	Section(title string)
	Success(indent int, format string, args ...interface{})
	Warn(indent int, format string, args ...interface{})
	Error(indent int, format string, args ...interface{})
	Info(indent int, format string, args ...interface{})
	Dim(indent int, line string)
	Newline()
}

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(question string, indent int) bool
}
