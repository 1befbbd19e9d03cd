package service

import "errors"

// Errors shared by the services and the HTTP error mapping
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRosterEmpty        = errors.New("no valid names found in the first column")
	ErrInvalidRosterFile  = errors.New("roster file is not a valid spreadsheet")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email address is already in use")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrUnauthenticated    = errors.New("user is not authenticated")
)
