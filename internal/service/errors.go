package service

import "errors"

var (
	ErrBadArguments    = errors.New("bad arguments")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrAccountDisabled = errors.New("account is deactivated")
)
