package services

import (
	"errors"
	"fmt"
	"log"

	"lager/internal/database"
	"lager/internal/repositories"
)

// Error taxonomy shared by every service. Handlers translate these into HTTP statuses.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInternalStore    = errors.New("internal store error")

	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid password", ErrUnauthenticated)
)

// ValidationError describes rejected input. Fields maps JSON field names to messages.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// classify maps repository and pool failures onto the taxonomy.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation):
		return err
	case errors.Is(err, repositories.ErrNoFields):
		return &ValidationError{Message: "No fields to update"}
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repositories.ErrDuplicateKey):
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	case errors.Is(err, database.ErrNotInitialized),
		errors.Is(err, database.ErrClosed),
		errors.Is(err, database.ErrUnavailable):
		log.Printf("%s: store unavailable: %v", op, err)
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	default:
		log.Printf("%s: %v", op, err)
		return fmt.Errorf("%w: %w", ErrInternalStore, err)
	}
}
