package services

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidAssignee    = errors.New("invalid assignee")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("inactive account")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidInput       = errors.New("invalid input")
)

// DetailError attaches a client-facing message to one of the sentinel errors.
type DetailError struct {
	Err    error
	Detail string
}

func (e *DetailError) Error() string { return e.Detail }

func (e *DetailError) Unwrap() error { return e.Err }

func detailed(err error, detail string) error {
	return &DetailError{Err: err, Detail: detail}
}

// Detail returns the client-facing message carried by err, or fallback.
func Detail(err error, fallback string) string {
	var de *DetailError
	if errors.As(err, &de) {
		return de.Detail
	}
	return fallback
}
