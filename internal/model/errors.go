package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrUsernameExists    = errors.New("username already exists")
	ErrAccountDisabled   = errors.New("account is disabled")
	ErrCannotModifyAdmin = errors.New("cannot modify admin")

	// ErrInvalidInput is returned for blank usernames or passwords
	ErrInvalidInput = errors.New("invalid input")

	// Clue errors
	ErrClueNotFound = errors.New("clue not found")

	// Progression errors
	ErrAlreadyCompleted = errors.New("hunt already completed")
	ErrNoSuchLevel      = errors.New("no more levels")
	ErrWrongCode        = errors.New("wrong code for this location")
)
