package store

import (
	"errors"
	"strings"
)

// Sentinel errors for lifecycle and integrity violations. Handlers map
// these onto HTTP statuses; everything else is an internal error.
var (
	ErrNotFound          = errors.New("not found")
	ErrQuoteNotOpen      = errors.New("quote not open for bidding")
	ErrDuplicateBid      = errors.New("bid already submitted for this quote")
	ErrNegotiationClosed = errors.New("negotiation is not active")
	ErrNotOwner          = errors.New("only the quote owner may do this")
	ErrConflict          = errors.New("conflicting unique field")
)

// isUniqueViolation reports whether err is a SQLite unique constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
