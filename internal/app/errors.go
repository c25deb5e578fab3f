package app

import "errors"

var (
	// ErrNotRegistered means the identity acted before registering on this
	// connection.
	ErrNotRegistered = errors.New("not registered")

	// ErrInvalidRole means the operation belongs to the other role.
	ErrInvalidRole = errors.New("invalid role for operation")

	// ErrInvalidTransition means no session exists in the state the
	// operation requires, or the caller already holds one.
	ErrInvalidTransition = errors.New("invalid session transition")
)
