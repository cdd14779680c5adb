package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Itinerary is the reusable travel-plan template a Trip instantiates.
// It carries the participant bounds every trip of this itinerary must honor
// and the duration its departure/return dates must match.
// Itineraries are created by planners and shared by many trips.
type Itinerary struct {
	ID              uuid.UUID
	Title           string
	Description     string
	DurationDays    int
	MinParticipants int
	MaxParticipants int
	PlannerID       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks the itinerary's internal consistency.
func (i Itinerary) Validate() error {
	if i.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if i.DurationDays < 1 {
		return fmt.Errorf("%w: duration must be at least one day", ErrValidation)
	}
	if i.MinParticipants < 1 {
		return fmt.Errorf("%w: minimum participants must be at least 1", ErrValidation)
	}
	if i.MaxParticipants < i.MinParticipants {
		return fmt.Errorf("%w: maximum participants must not be below the minimum", ErrValidation)
	}
	return nil
}
