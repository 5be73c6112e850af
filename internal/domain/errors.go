// Package domain holds the error taxonomy shared by services, repositories
// and handlers. Handlers map these to HTTP status codes at the boundary;
// services never write responses.
package domain

import "errors"

var (
	// ErrNotFound means a referenced student, tutor or gate pass does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition means a state-machine operation was attempted from a
	// disallowed source state. The record is left untouched.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnauthorized means the caller lacks the role or ownership relationship
	// the operation requires.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDuplicateKey means a uniqueness constraint (admission number, email,
	// employee id) would be violated.
	ErrDuplicateKey = errors.New("already exists")

	// ErrPassAlreadyOpen means the requester already has a pending or approved
	// pass; a student holds at most one open pass at a time.
	ErrPassAlreadyOpen = errors.New("student already has an open gate pass")

	// ErrAccountPending means the account exists but has not been approved for
	// login yet (student awaiting tutor approval, tutor awaiting admin
	// verification).
	ErrAccountPending = errors.New("account pending approval")

	// ErrBadCredentials means the identifier/password pair did not match.
	ErrBadCredentials = errors.New("invalid credentials")
)
