package domain

import "errors"

// Sentinel errors shared by every layer. Repositories map database failures
// onto these, use cases wrap them with operation detail, and delivery maps
// them to HTTP status codes.
var (
	// ErrNotFound covers a missing product, a missing order, or an order
	// that exists but is owned by a different customer.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when the requested quantity exceeds
	// the product's currently available stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned for a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrConflict signals a concurrent-mutation conflict (lost open-order
	// creation race, serialization failure). Callers may retry from fresh
	// state; the use case does so a bounded number of times before
	// surfacing it.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrStorageUnavailable signals a transient backend failure. It is
	// never retried across transaction boundaries.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrAlreadyExists is returned on uniqueness violations outside the
	// cart engine (duplicate username, duplicate wishlist entry).
	ErrAlreadyExists = errors.New("already exists")
)
