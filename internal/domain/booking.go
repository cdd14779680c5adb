package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxPartySize is the most participants a single booking may cover.
const MaxPartySize = 20

// Participant is a named person covered by a booking. Participants are owned
// by their booking and created and destroyed with it; the same person may
// appear on different bookings.
type Participant struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	FirstName   string
	LastName    string
	DateOfBirth time.Time
}

// Validate checks that the participant's required fields are present.
func (p Participant) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return fmt.Errorf("%w: participant first name is required", ErrValidation)
	}
	if strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("%w: participant last name is required", ErrValidation)
	}
	if p.DateOfBirth.IsZero() {
		return fmt.Errorf("%w: participant date of birth is required", ErrValidation)
	}
	return nil
}

// Booking is one traveler's reservation of seats on a trip. The traveler's
// contact details are captured at booking time — identity management is
// outside this system. A booking is created atomically with its participants
// and its payment record, and its total cost is never cached: it is derived
// through the CostModel at computation time and frozen into the Payment.
type Booking struct {
	ID               uuid.UUID
	TripID           uuid.UUID
	TravelerID       uuid.UUID
	TravelerName     string
	TravelerEmail    string
	DepartureAirport string
	Insurance        InsuranceOption
	BookedOn         time.Time
	Participants     []Participant
	CreatedAt        time.Time
}

// PartySize returns the number of participants covered by the booking.
func (b Booking) PartySize() int { return len(b.Participants) }

// Validate checks the booking's own fields and every participant.
// Party-size bounds are enforced separately by the capacity check, which
// reports them as typed admission rejections rather than validation errors.
func (b Booking) Validate() error {
	if b.TravelerID == uuid.Nil {
		return fmt.Errorf("%w: traveler id is required", ErrValidation)
	}
	if strings.TrimSpace(b.TravelerEmail) == "" {
		return fmt.Errorf("%w: traveler email is required", ErrValidation)
	}
	if strings.TrimSpace(b.DepartureAirport) == "" {
		return fmt.Errorf("%w: departure airport is required", ErrValidation)
	}
	for i, p := range b.Participants {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("participant %d: %w", i+1, err)
		}
	}
	return nil
}

// Cost builds the CostModel for this booking against the given per-person
// price, with the selected insurance decorators applied.
func (b Booking) Cost(perPerson float64) CostModel {
	return b.Insurance.Apply(NewBaseCost(perPerson, b.PartySize()))
}
