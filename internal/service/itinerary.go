package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lucamoretti/adventure-together/internal/domain"
	"github.com/lucamoretti/adventure-together/internal/repo"
)

// ItineraryService manages the planner's itinerary catalog.
type ItineraryService struct {
	itineraries repo.ItineraryRepo
}

func NewItineraryService(itineraries repo.ItineraryRepo) *ItineraryService {
	return &ItineraryService{itineraries: itineraries}
}

// CreateItineraryRequest is the planner's input for a new itinerary.
type CreateItineraryRequest struct {
	Title           string
	Description     string
	DurationDays    int
	MinParticipants int
	MaxParticipants int
	PlannerID       uuid.UUID
}

// Create validate-and-persists a new itinerary.
func (s *ItineraryService) Create(ctx context.Context, req CreateItineraryRequest) (domain.Itinerary, error) {
	itinerary := domain.Itinerary{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		DurationDays:    req.DurationDays,
		MinParticipants: req.MinParticipants,
		MaxParticipants: req.MaxParticipants,
		PlannerID:       req.PlannerID,
	}
	if err := itinerary.Validate(); err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Create: %w", err)
	}

	created, err := s.itineraries.Create(ctx, itinerary)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns one itinerary.
func (s *ItineraryService) GetByID(ctx context.Context, id uuid.UUID) (domain.Itinerary, error) {
	itinerary, err := s.itineraries.GetByID(ctx, id)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.GetByID: %w", err)
	}
	return itinerary, nil
}

// List returns the whole catalog, newest first.
func (s *ItineraryService) List(ctx context.Context) ([]domain.Itinerary, error) {
	itineraries, err := s.itineraries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.List: %w", err)
	}
	return itineraries, nil
}
