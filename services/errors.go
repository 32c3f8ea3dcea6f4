package services

import (
	"errors"
)

// Error kinds returned by the service layer. Controllers translate these to
// HTTP statuses with errors.Is; nothing here is fatal to the process.
var (
	// ErrValidation means a business-rule precondition was not met
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrPermission means the actor lacks the required role
	ErrPermission = errors.New("permission denied")

	// ErrIntegrity means a delete was blocked by dependent records
	ErrIntegrity = errors.New("integrity constraint")
)

// RequireRole checks an actor's role against an allowed set
func RequireRole(role string, allowed ...string) error {
	for _, r := range allowed {
		if r == role {
			return nil
		}
	}
	return ErrPermission
}
