package domain

import "errors"

// Domain errors
var (
	ErrForbidden         = errors.New("forbidden")
	ErrUserNotFound      = errors.New("user not found")
	ErrDesktopNotFound   = errors.New("desktop not found")
	ErrOSNameTaken       = errors.New("os name is already taken")
	ErrOSNameAlreadySet  = errors.New("user already has an os name")
	ErrInvalidOSName     = errors.New("invalid os name")
	ErrInvalidBackground = errors.New("invalid background")
	ErrCorruptState      = errors.New("stored desktop state is invalid")

	// ErrInvalidState matches both ShapeError and ConsistencyError via errors.Is
	ErrInvalidState = errors.New("invalid desktop state")
)
