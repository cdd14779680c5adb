package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lucamoretti/adventure-together/internal/domain"
	"github.com/lucamoretti/adventure-together/internal/service"
)

// dateLayout is the wire format for calendar dates (booking windows,
// departure and return).
const dateLayout = "2006-01-02"

// CreateTripRequest is the JSON body for POST /trips. Dates are "2006-01-02".
type CreateTripRequest struct {
	ItineraryID         uuid.UUID `json:"itinerary_id"`
	PlannerID           uuid.UUID `json:"planner_id"`
	BookingsOpenOn      string    `json:"bookings_open_on"`
	BookingsCloseOn     string    `json:"bookings_close_on"`
	DepartureDate       string    `json:"departure_date"`
	ReturnDate          string    `json:"return_date"`
	PricePerParticipant float64   `json:"price_per_participant"`
}

// TripResponse is the JSON representation of a trip.
type TripResponse struct {
	ID                  uuid.UUID         `json:"id"`
	ItineraryID         uuid.UUID         `json:"itinerary_id"`
	PlannerID           uuid.UUID         `json:"planner_id"`
	State               string            `json:"state"`
	BookingsOpenOn      string            `json:"bookings_open_on"`
	BookingsCloseOn     string            `json:"bookings_close_on"`
	DepartureDate       string            `json:"departure_date"`
	ReturnDate          string            `json:"return_date"`
	PricePerParticipant float64           `json:"price_per_participant"`
	Participants        int               `json:"participants"`
	SeatsLeft           int               `json:"seats_left"`
	Itinerary           ItineraryResponse `json:"itinerary"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	req := service.CreateTripRequest{
		ItineraryID:         body.ItineraryID,
		PlannerID:           body.PlannerID,
		PricePerParticipant: body.PricePerParticipant,
	}
	var err error
	if req.BookingsOpenOn, err = time.Parse(dateLayout, body.BookingsOpenOn); err != nil {
		respondBadRequest(w, "bookings_open_on must be a YYYY-MM-DD date")
		return
	}
	if req.BookingsCloseOn, err = time.Parse(dateLayout, body.BookingsCloseOn); err != nil {
		respondBadRequest(w, "bookings_close_on must be a YYYY-MM-DD date")
		return
	}
	if req.DepartureDate, err = time.Parse(dateLayout, body.DepartureDate); err != nil {
		respondBadRequest(w, "departure_date must be a YYYY-MM-DD date")
		return
	}
	if req.ReturnDate, err = time.Parse(dateLayout, body.ReturnDate); err != nil {
		respondBadRequest(w, "return_date must be a YYYY-MM-DD date")
		return
	}

	created, err := s.trips.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, tripToResponse(created))
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tripToResponse(trip))
}

// ListTrips handles GET /trips.
// ?open=true filters to trips currently accepting bookings;
// ?state=<state> filters by lifecycle state. The filters are exclusive.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	var (
		trips []domain.Trip
		err   error
	)
	switch {
	case r.URL.Query().Get("open") == "true":
		trips, err = s.trips.ListOpenForBooking(r.Context())
	case r.URL.Query().Get("state") != "":
		state, perr := domain.ParseTripState(r.URL.Query().Get("state"))
		if perr != nil {
			respondBadRequest(w, "unknown trip state")
			return
		}
		trips, err = s.trips.ListByState(r.Context(), state)
	default:
		trips, err = s.trips.List(r.Context())
	}
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]TripResponse, len(trips))
	for i, t := range trips {
		out[i] = tripToResponse(t)
	}
	respondJSON(w, http.StatusOK, out)
}

// CancelTrip handles POST /trips/{id}/cancel.
func (s *Server) CancelTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	state, err := s.lifecycle.Cancel(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"state": string(state)})
}

// EvaluateTrip handles POST /trips/{id}/evaluate.
// It forces an immediate lifecycle re-evaluation instead of waiting for the
// periodic sweep, and returns the (possibly unchanged) resulting state.
func (s *Server) EvaluateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	state, err := s.lifecycle.Evaluate(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"state": string(state)})
}

// tripToResponse converts a domain.Trip into its JSON shape.
func tripToResponse(t domain.Trip) TripResponse {
	return TripResponse{
		ID:                  t.ID,
		ItineraryID:         t.ItineraryID,
		PlannerID:           t.PlannerID,
		State:               string(t.State),
		BookingsOpenOn:      t.BookingsOpenOn.Format(dateLayout),
		BookingsCloseOn:     t.BookingsCloseOn.Format(dateLayout),
		DepartureDate:       t.DepartureDate.Format(dateLayout),
		ReturnDate:          t.ReturnDate.Format(dateLayout),
		PricePerParticipant: t.PricePerParticipant,
		Participants:        t.Participants,
		SeatsLeft:           t.SeatsLeft(),
		Itinerary:           itineraryToResponse(t.Itinerary),
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}
