// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to operate on a quote owned by someone else, while
// ErrConflict signals that an operation cannot proceed due to
// existing dependent records (e.g. converting a quote that already
// has a reservation).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because
// of conflicting state, such as converting a quote that has already
// been reserved. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")

// ErrQuoteNotFound is returned when a quote does not exist.
var ErrQuoteNotFound = errors.New("quote not found")

// ErrPriceNotFound is returned by the pricing step when no grid row
// matches a quote line's codes and checkin date. The quote stays in
// its valid-but-unpriced state and the caller reports it as awaiting
// a quote.
var ErrPriceNotFound = errors.New("price not found")
