package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing participant data, inconsistent trip dates).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrTripNotBookable is returned by the capacity check when the trip's
// current state does not accept new bookings (closed, expired, or cancelled).
var ErrTripNotBookable = errors.New("trip not bookable")

// ErrInsufficientCapacity is returned by the capacity check when admitting
// the requested party would push the trip past its itinerary's maximum
// participant bound.
var ErrInsufficientCapacity = errors.New("insufficient capacity")

// ErrInvalidPartySize is returned when a booking requests fewer than 1 or
// more than MaxPartySize participants. A client-input error, recoverable.
var ErrInvalidPartySize = errors.New("invalid party size")

// ErrIllegalTransition is returned when a manual cancel is attempted from a
// state that does not allow it. No mutation is performed.
var ErrIllegalTransition = errors.New("illegal state transition")

// ErrPaymentDeclined is returned when the payment provider refuses or fails
// to authorize the hold for a booking. The admission is aborted with nothing
// persisted; the caller may retry with a fresh request.
var ErrPaymentDeclined = errors.New("payment authorization failed")

// ErrTripNotOpen is returned when lifecycle evaluation is attempted on a
// trip that was never opened (no state assigned) or that lacks its itinerary
// bounds. This indicates a programming error upstream, not a routine
// condition — trips are opened exactly once at creation time.
var ErrTripNotOpen = errors.New("trip not open")
