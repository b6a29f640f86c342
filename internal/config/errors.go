package config

import "fmt"

// Error reports an invalid configuration value. Configuration errors
// are fatal at startup; nothing downgrades them to warnings.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config error (%s): %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
