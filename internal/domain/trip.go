// Package domain contains the core data types and business rules for the
// Adventure Together booking engine. This package has no I/O: the trip
// lifecycle state machine, the cost decorators, and the capacity rules all
// live here as pure computation, and are imported by every other internal
// package (repo, service, handler).
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trip is an offering of a specific itinerary on specific dates at a
// specific per-person price. It is the aggregate root for admission control:
// its state and participant count are the only data that require mutual
// exclusion, which the repo layer provides with a row-level lock.
//
// Participants is the derived sum of participant counts across all bookings
// on this trip, hydrated by the repo alongside the row. Itinerary is the
// template the trip instantiates, also hydrated on load.
type Trip struct {
	ID                  uuid.UUID
	ItineraryID         uuid.UUID
	PlannerID           uuid.UUID
	BookingsOpenOn      time.Time
	BookingsCloseOn     time.Time
	DepartureDate       time.Time
	ReturnDate          time.Time
	PricePerParticipant float64
	State               TripState // zero value until Open is called

	Itinerary    Itinerary
	Participants int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces the date invariants a trip must satisfy before it can
// be opened:
//   - bookings window start must not be after its end
//   - departure must not be after return
//   - return − departure must match the itinerary duration
//   - price must be positive
//
// Returns ErrValidation wrapped with a description of the first violation.
func (t Trip) Validate() error {
	if t.BookingsOpenOn.After(t.BookingsCloseOn) {
		return fmt.Errorf("%w: bookings window start is after its end", ErrValidation)
	}
	if t.DepartureDate.After(t.ReturnDate) {
		return fmt.Errorf("%w: departure date is after return date", ErrValidation)
	}
	if t.PricePerParticipant <= 0 {
		return fmt.Errorf("%w: price per participant must be positive", ErrValidation)
	}
	if t.Itinerary.DurationDays > 0 {
		nights := int(t.ReturnDate.Sub(t.DepartureDate).Hours() / 24)
		if nights+1 != t.Itinerary.DurationDays {
			return fmt.Errorf("%w: trip spans %d days but itinerary lasts %d",
				ErrValidation, nights+1, t.Itinerary.DurationDays)
		}
	}
	return nil
}

// Open assigns the initial lifecycle state. A trip is opened exactly once,
// at creation time; opening an already-opened trip is rejected.
func (t *Trip) Open() error {
	if t.State != "" {
		return fmt.Errorf("%w: trip %s already opened", ErrValidation, t.ID)
	}
	t.State = StatePendingConfirmation
	return nil
}

// SeatsLeft returns how many more participants the trip can admit before
// hitting its itinerary's maximum bound.
func (t Trip) SeatsLeft() int {
	return t.Itinerary.MaxParticipants - t.Participants
}
