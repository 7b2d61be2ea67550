package cli

import "errors"

var (
	ErrNotLoggedIn     = errors.New("not logged in, run portalctl login")
	ErrAdminOnly       = errors.New("this command requires an admin account")
	ErrAlreadyLoggedIn = errors.New("already logged in, run portalctl logout first or pass --force")
	ErrSessionExpired  = errors.New("session expired, run portalctl login")
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrUnknownResource = errors.New("unknown resource")
)
