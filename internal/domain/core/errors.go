package core

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrEmailTaken      = errors.New("email already has a login account")
	ErrAlreadyLinked   = errors.New("employee already has a login account")
	ErrInvalidPassword = errors.New("invalid password")
	ErrNameTaken       = errors.New("department name already exists")
)
