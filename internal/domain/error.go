package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrEmptyPromoCode     = errors.New("promo code is empty")
	ErrProfileUnavailable = errors.New("profile unavailable")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
