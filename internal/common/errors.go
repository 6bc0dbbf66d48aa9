package common

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by services and handlers. Services wrap these
// sentinels with context via fmt.Errorf and %w; handlers classify with
// errors.Is. Only ErrPersistence is safe for callers to retry.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrLimitExceeded     = errors.New("usage limit exceeded")
	ErrPersistence       = errors.New("persistence failure")
)

// NotFoundf wraps ErrNotFound with a resource description.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// InvalidTransitionf wraps ErrInvalidTransition with transition details.
func InvalidTransitionf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidTransition)...)
}

// Unauthorizedf wraps ErrUnauthorized with the missing capability.
func Unauthorizedf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnauthorized)...)
}

// LimitExceededf wraps ErrLimitExceeded with the resource that hit its cap.
func LimitExceededf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrLimitExceeded)...)
}

// Persistencef wraps a storage error as ErrPersistence so callers can
// distinguish retryable failures from permanent ones.
func Persistencef(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrPersistence)
}
