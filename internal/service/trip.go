package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lucamoretti/adventure-together/internal/domain"
	"github.com/lucamoretti/adventure-together/internal/repo"
)

// TripService publishes itineraries as bookable trips and answers trip
// queries. State transitions go through LifecycleService, not here.
type TripService struct {
	trips       repo.TripRepo
	itineraries repo.ItineraryRepo
	log         *slog.Logger
	now         func() time.Time
}

// NewTripService constructs a TripService. now is the validation clock;
// pass nil to use time.Now.
func NewTripService(trips repo.TripRepo, itineraries repo.ItineraryRepo, log *slog.Logger, now func() time.Time) *TripService {
	if now == nil {
		now = time.Now
	}
	return &TripService{trips: trips, itineraries: itineraries, log: log, now: now}
}

// CreateTripRequest is the planner's input for publishing a trip.
type CreateTripRequest struct {
	ItineraryID         uuid.UUID
	PlannerID           uuid.UUID
	BookingsOpenOn      time.Time
	BookingsCloseOn     time.Time
	DepartureDate       time.Time
	ReturnDate          time.Time
	PricePerParticipant float64
}

// Create validates a trip against its itinerary and opens it for booking.
func (s *TripService) Create(ctx context.Context, req CreateTripRequest) (domain.Trip, error) {
	itinerary, err := s.itineraries.GetByID(ctx, req.ItineraryID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	trip := domain.Trip{
		ItineraryID:         req.ItineraryID,
		PlannerID:           req.PlannerID,
		BookingsOpenOn:      req.BookingsOpenOn,
		BookingsCloseOn:     req.BookingsCloseOn,
		DepartureDate:       req.DepartureDate,
		ReturnDate:          req.ReturnDate,
		PricePerParticipant: domain.RoundMoney(req.PricePerParticipant),
		Itinerary:           itinerary,
	}
	if err := trip.Validate(); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	if err := trip.Open(); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	s.log.Info("trip published", "trip_id", created.ID, "itinerary", itinerary.Title)
	return created, nil
}

// GetByID returns one trip with its itinerary and live participant count.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// List returns all trips, newest departure first.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	return trips, nil
}

// ListOpenForBooking returns trips currently accepting bookings.
func (s *TripService) ListOpenForBooking(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.trips.ListOpenForBooking(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListOpenForBooking: %w", err)
	}
	return trips, nil
}

// ListByState returns trips in the given lifecycle state.
func (s *TripService) ListByState(ctx context.Context, state domain.TripState) ([]domain.Trip, error) {
	trips, err := s.trips.ListByState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListByState: %w", err)
	}
	return trips, nil
}
