package domain

import (
	"fmt"
	"time"
)

// TripState is the lifecycle state of a Trip. States are a closed set, so
// they are modeled as a string tag with explicit transition functions rather
// than a type per state: the tag round-trips through the database unchanged
// and the whole transition table is readable in one place (Evaluate and
// NextOnCancel below).
type TripState string

const (
	// StatePendingConfirmation is the initial state: the trip is taking
	// bookings but has not yet reached its minimum participant count.
	StatePendingConfirmation TripState = "pending_confirmation"

	// StateConfirmedOpen means the minimum was reached and the trip departs,
	// but bookings are still accepted up to the maximum or the window close.
	StateConfirmedOpen TripState = "confirmed_open"

	// StateConfirmedClosed means the trip departs and bookings are closed,
	// either because the maximum was reached or the window elapsed.
	StateConfirmedClosed TripState = "confirmed_closed"

	// StateExpiredClosed means the booking window elapsed without reaching
	// the minimum; the trip will not depart unless an admin intervenes.
	StateExpiredClosed TripState = "expired_closed"

	// StateCancelled is the absorbing terminal state set by an admin cancel.
	StateCancelled TripState = "cancelled"
)

// ParseTripState converts a stored tag back to a TripState,
// rejecting unknown values.
func ParseTripState(s string) (TripState, error) {
	switch st := TripState(s); st {
	case StatePendingConfirmation, StateConfirmedOpen, StateConfirmedClosed,
		StateExpiredClosed, StateCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown trip state %q", s)
	}
}

// AcceptsBookings reports whether new bookings may be admitted in this state.
func (s TripState) AcceptsBookings() bool {
	return s == StatePendingConfirmation || s == StateConfirmedOpen
}

// Cancellable reports whether an admin may cancel a trip in this state.
// Confirmed trips are financially committed and can no longer be cancelled.
func (s TripState) Cancellable() bool {
	return s == StatePendingConfirmation || s == StateExpiredClosed
}

// MailTemplate returns the notification template identifier used when a trip
// transitions into this state. The initial state sends nothing.
func (s TripState) MailTemplate() string {
	switch s {
	case StateConfirmedOpen:
		return "mail/confirmed-open"
	case StateConfirmedClosed:
		return "mail/confirmed-closed"
	case StateExpiredClosed:
		return "mail/expired-closed"
	case StateCancelled:
		return "mail/cancelled"
	default:
		return ""
	}
}

// Evaluate computes the state the trip should be in as of today, given its
// current participant count and booking window. It performs no I/O and no
// mutation: callers compare the result with the current state, persist the
// change, and broadcast notifications.
//
// Transition table:
//
//	PendingConfirmation → ConfirmedClosed   participants ≥ max
//	PendingConfirmation → ConfirmedOpen     participants ≥ min
//	PendingConfirmation → ExpiredClosed     window elapsed, min not reached
//	ConfirmedOpen       → ConfirmedClosed   participants ≥ max or window elapsed
//	ConfirmedClosed, ExpiredClosed, Cancelled: no automatic transitions
//
// In PendingConfirmation the participant-count checks are evaluated before
// the expiry check, so a trip that reaches its minimum in the same pass in
// which its window elapses still confirms.
//
// Returns ErrTripNotOpen if the trip was never opened or its itinerary
// bounds are missing — evaluating such a trip is a programming error.
func (t Trip) Evaluate(today time.Time) (TripState, error) {
	if t.State == "" {
		return "", fmt.Errorf("%w: trip %s has no state", ErrTripNotOpen, t.ID)
	}
	if t.Itinerary.MaxParticipants <= 0 || t.BookingsCloseOn.IsZero() {
		return "", fmt.Errorf("%w: trip %s is missing itinerary bounds or dates", ErrTripNotOpen, t.ID)
	}

	// The window stays open through the whole closing day: only the day
	// after BookingsCloseOn counts as elapsed. today usually carries a
	// clock time while BookingsCloseOn is a bare date, so the comparison
	// is calendar-date against calendar-date.
	windowElapsed := dateOnly(today).After(dateOnly(t.BookingsCloseOn))

	switch t.State {
	case StatePendingConfirmation:
		switch {
		case t.Participants >= t.Itinerary.MaxParticipants:
			return StateConfirmedClosed, nil
		case t.Participants >= t.Itinerary.MinParticipants:
			return StateConfirmedOpen, nil
		case windowElapsed:
			return StateExpiredClosed, nil
		}
		return StatePendingConfirmation, nil

	case StateConfirmedOpen:
		if t.Participants >= t.Itinerary.MaxParticipants || windowElapsed {
			return StateConfirmedClosed, nil
		}
		return StateConfirmedOpen, nil

	default:
		// Closed, expired, and cancelled states have no automatic transitions.
		return t.State, nil
	}
}

// dateOnly strips the clock time, keeping the calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextOnCancel computes the state resulting from a manual admin cancel.
// Cancelling is allowed from PendingConfirmation and ExpiredClosed only;
// cancelling an already-cancelled trip is an idempotent no-op. Cancelling a
// confirmed trip returns ErrIllegalTransition with nothing changed.
func (t Trip) NextOnCancel() (TripState, error) {
	switch {
	case t.State == "":
		return "", fmt.Errorf("%w: trip %s has no state", ErrTripNotOpen, t.ID)
	case t.State == StateCancelled:
		return StateCancelled, nil
	case t.State.Cancellable():
		return StateCancelled, nil
	default:
		return "", fmt.Errorf("%w: cannot cancel a trip in state %s", ErrIllegalTransition, t.State)
	}
}
