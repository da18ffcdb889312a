package services

import "errors"

var (
	ErrAlreadyAuthenticated = errors.New("already authenticated, log out first")
	ErrNotPending           = errors.New("no registration is awaiting verification")
	ErrNothingStaged        = errors.New("no deletion awaiting confirmation")
	ErrUnknownEntry         = errors.New("entry not found in the loaded list")
)
