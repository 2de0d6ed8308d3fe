package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrDuplicateProposal   = errors.New("proposal already exists for this project")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrMissingSecret       = errors.New("token signing secret is not configured")
	ErrForbidden           = errors.New("access denied")
	ErrNotOwner            = errors.New("access denied: only the project owner can do this")
	ErrNotAMember          = errors.New("access denied: you are not part of this project")
	ErrNotACollaborator    = errors.New("access denied: you are not a collaborator on this project")
	ErrNotFound            = errors.New("not found")
	ErrInvalidInviteCode   = errors.New("invalid invite code")
	ErrAlreadyCollaborator = errors.New("you are already a collaborator")
)

// ValidationError describes malformed or missing input. It matches ErrValidation
// with errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationErr(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// notFound wraps ErrNotFound with the name of the missing entity.
func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}
