package application

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("not allowed to act on this account")
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileLimit       = errors.New("maximum profile limit reached")
	ErrStorageUnavailable = errors.New("avatar storage not configured")
)
