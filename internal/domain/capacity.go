package domain

import "fmt"

// CheckCapacity decides whether a party of the requested size may be
// admitted to the trip. It is the pure half of the capacity guard: callers
// must hold the trip's exclusive row lock so the participant count it reads
// cannot change between the check and the bundle write.
//
// Rejections are typed and terminal for the request:
//   - ErrInvalidPartySize   — requested outside [1, MaxPartySize]
//   - ErrTripNotBookable    — the trip's state does not accept bookings
//   - ErrInsufficientCapacity — admitting would exceed the itinerary maximum
func (t Trip) CheckCapacity(requested int) error {
	if requested < 1 || requested > MaxPartySize {
		return fmt.Errorf("%w: requested %d, must be between 1 and %d",
			ErrInvalidPartySize, requested, MaxPartySize)
	}
	if !t.State.AcceptsBookings() {
		return fmt.Errorf("%w: trip %s is in state %s", ErrTripNotBookable, t.ID, t.State)
	}
	if t.Participants+requested > t.Itinerary.MaxParticipants {
		return fmt.Errorf("%w: %d seat(s) left, %d requested",
			ErrInsufficientCapacity, t.SeatsLeft(), requested)
	}
	return nil
}
