package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lucamoretti/adventure-together/internal/domain"
	"github.com/lucamoretti/adventure-together/internal/service"
)

// CreateItineraryRequest is the JSON body for POST /itineraries.
type CreateItineraryRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationDays    int       `json:"duration_days"`
	MinParticipants int       `json:"min_participants"`
	MaxParticipants int       `json:"max_participants"`
	PlannerID       uuid.UUID `json:"planner_id"`
}

// ItineraryResponse is the JSON representation of an itinerary.
type ItineraryResponse struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DurationDays    int       `json:"duration_days"`
	MinParticipants int       `json:"min_participants"`
	MaxParticipants int       `json:"max_participants"`
	PlannerID       uuid.UUID `json:"planner_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateItinerary handles POST /itineraries.
func (s *Server) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	var body CreateItineraryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	created, err := s.itineraries.Create(r.Context(), service.CreateItineraryRequest{
		Title:           body.Title,
		Description:     body.Description,
		DurationDays:    body.DurationDays,
		MinParticipants: body.MinParticipants,
		MaxParticipants: body.MaxParticipants,
		PlannerID:       body.PlannerID,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, itineraryToResponse(created))
}

// GetItinerary handles GET /itineraries/{id}.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid itinerary id")
		return
	}

	itinerary, err := s.itineraries.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, itineraryToResponse(itinerary))
}

// ListItineraries handles GET /itineraries.
func (s *Server) ListItineraries(w http.ResponseWriter, r *http.Request) {
	itineraries, err := s.itineraries.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]ItineraryResponse, len(itineraries))
	for i, it := range itineraries {
		out[i] = itineraryToResponse(it)
	}
	respondJSON(w, http.StatusOK, out)
}

// itineraryToResponse converts a domain.Itinerary into its JSON shape.
func itineraryToResponse(i domain.Itinerary) ItineraryResponse {
	return ItineraryResponse{
		ID:              i.ID,
		Title:           i.Title,
		Description:     i.Description,
		DurationDays:    i.DurationDays,
		MinParticipants: i.MinParticipants,
		MaxParticipants: i.MaxParticipants,
		PlannerID:       i.PlannerID,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}
