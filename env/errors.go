package env

import "errors"

// Sentinel errors for errors.Is checks.
var (
	// ErrDuplicateUser is returned when registering an identity that is
	// already taken. Registration leaves no partial state behind.
	ErrDuplicateUser = errors.New("user name is already taken")

	// ErrUserNotFound is returned by lookups and routing when an identity is
	// not registered.
	ErrUserNotFound = errors.New("user not found")

	// ErrLogIO is returned when appending to the audit log fails. Delivery
	// is not rolled back; see Environment.SendMessage.
	ErrLogIO = errors.New("audit log write failed")

	// ErrClosed is returned for operations on a closed environment.
	ErrClosed = errors.New("environment is closed")
)
