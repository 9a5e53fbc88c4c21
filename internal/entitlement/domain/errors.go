package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured indicates an operation was called before Configure.
	ErrNotConfigured = errors.New("synchronizer not configured")

	// ErrPurchaseCancelled indicates the user backed out of the purchase.
	// Callers are expected to absorb it silently.
	ErrPurchaseCancelled = errors.New("purchase cancelled by user")

	// ErrPurchasePending indicates the purchase awaits external approval.
	ErrPurchasePending = errors.New("purchase pending external approval")

	// ErrVerificationFailed indicates the backend did not verify a
	// transaction.
	ErrVerificationFailed = errors.New("transaction verification failed")

	// ErrNetwork indicates the backend could not be reached or returned a
	// malformed payload.
	ErrNetwork = errors.New("network error")

	// ErrNoActiveSubscription indicates the customer has nothing to manage.
	ErrNoActiveSubscription = errors.New("no active subscription")

	// ErrUnknown indicates an unrecognized platform purchase outcome.
	ErrUnknown = errors.New("unknown purchase outcome")
)

// ServerError indicates the backend answered with an unexpected status code.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status %d", e.StatusCode)
}

// ProductNotFoundError indicates the platform catalog has no such product.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}
