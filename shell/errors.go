package shell

import (
	"errors"

	"github.com/brettbedarf/webterm/filesystem"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCommandNotFound = errors.New("command not found")

	// Re-exported so callers can classify a CommandError without importing
	// the filesystem package.
	ErrNotFound = filesystem.ErrNotFound
	ErrExists   = filesystem.ErrExists
)

// CommandError is a failure a built-in reports to the user. The shell prints
// Msg and keeps going; Kind classifies it for errors.Is.
type CommandError struct {
	Kind error
	Msg  string
}

func (e *CommandError) Error() string {
	return e.Msg
}

func (e *CommandError) Unwrap() error {
	return e.Kind
}

func cmdErr(kind error, msg string) *CommandError {
	return &CommandError{Kind: kind, Msg: msg}
}
