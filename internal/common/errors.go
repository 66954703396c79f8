// Package common defines shared constants and sentinel errors used across
// DeckVault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Inventory/allocation errors.
	ErrorInsufficientStock = errors.New("insufficient stock")
	ErrorItemReserved      = errors.New("item has active reservations")

	// Validation errors.
	ErrorNotAnInstance   = errors.New("deck is not a materialized instance")
	ErrorIsInstance      = errors.New("deck is a materialized instance")
	ErrorAlreadyExists   = errors.New("already exists")
	ErrorInvalidQuantity = errors.New("invalid quantity")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
