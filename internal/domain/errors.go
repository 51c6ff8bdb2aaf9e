package domain

import "errors"

var (
	// ErrNotFound covers both a record that does not exist and a record
	// owned by another user. Callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found or access denied")

	// ErrInvalidCredentials is returned for any login failure, whether the
	// email is unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountInactive is returned when the account exists but its status
	// is not active.
	ErrAccountInactive = errors.New("your account is not active")
)

// ValidationError marks bad input that should surface as a 400 response.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }
