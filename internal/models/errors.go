package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAuthMismatch      = errors.New("invalid credentials")
	ErrDuplicateIdentity = errors.New("identity already taken")
	ErrConflictEdge      = errors.New("edge already exists")
	ErrSelfFollow        = errors.New("users cannot follow themselves")
	ErrForbidden         = errors.New("not allowed")
	ErrInvalidMessage    = fmt.Errorf("message text must be 1 to %d characters", MaxMessageLength)
	ErrPasswordTooLong   = fmt.Errorf("password must be at most %d bytes", MaxPasswordBytes)
)

// DuplicateIdentityError reports which unique user field collided.
type DuplicateIdentityError struct {
	Field string // "username" or "email"
}

func (e *DuplicateIdentityError) Error() string {
	if e.Field == "" {
		return ErrDuplicateIdentity.Error()
	}
	return fmt.Sprintf("%s already taken", e.Field)
}

func (e *DuplicateIdentityError) Is(target error) bool {
	return target == ErrDuplicateIdentity
}
