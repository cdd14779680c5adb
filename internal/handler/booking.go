package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lucamoretti/adventure-together/internal/domain"
	"github.com/lucamoretti/adventure-together/internal/service"
)

// ParticipantRequest is one traveler in a booking request. DateOfBirth is
// "2006-01-02".
type ParticipantRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

// CreateBookingRequest is the JSON body for POST /trips/{id}/bookings.
type CreateBookingRequest struct {
	TravelerID       uuid.UUID            `json:"traveler_id"`
	TravelerName     string               `json:"traveler_name"`
	TravelerEmail    string               `json:"traveler_email"`
	DepartureAirport string               `json:"departure_airport"`
	Insurance        string               `json:"insurance"`
	Participants     []ParticipantRequest `json:"participants"`
}

// ParticipantResponse is one traveler in a booking response.
type ParticipantResponse struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth string    `json:"date_of_birth"`
}

// BookingResponse is the JSON representation of a booking.
type BookingResponse struct {
	ID               uuid.UUID             `json:"id"`
	TripID           uuid.UUID             `json:"trip_id"`
	TravelerID       uuid.UUID             `json:"traveler_id"`
	TravelerName     string                `json:"traveler_name"`
	TravelerEmail    string                `json:"traveler_email"`
	DepartureAirport string                `json:"departure_airport"`
	Insurance        string                `json:"insurance"`
	BookedOn         time.Time             `json:"booked_on"`
	Participants     []ParticipantResponse `json:"participants"`
}

// PaymentResponse is the JSON representation of a booking's payment record.
// ClientToken is the provider-side handle the frontend uses to complete
// checkout.
type PaymentResponse struct {
	ID          uuid.UUID `json:"id"`
	Status      string    `json:"status"`
	Amount      float64   `json:"amount"`
	Insurance   float64   `json:"insurance_amount"`
	Currency    string    `json:"currency"`
	ProviderRef string    `json:"provider_ref"`
	ClientToken string    `json:"client_token,omitempty"`
	MethodRef   string    `json:"method_ref,omitempty"`
}

// AdmissionResponse is the JSON body returned by a successful admission.
type AdmissionResponse struct {
	Booking BookingResponse `json:"booking"`
	Payment PaymentResponse `json:"payment"`
	Cost    CostResponse    `json:"cost"`
}

// CostResponse is the booking's cost breakdown as frozen at admission.
type CostResponse struct {
	TripCost      float64 `json:"trip_cost"`
	InsuranceCost float64 `json:"insurance_cost"`
	TotalCost     float64 `json:"total_cost"`
	Currency      string  `json:"currency"`
}

// CreateBooking handles POST /trips/{id}/bookings.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathUUID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	var body CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	insurance, err := domain.ParseInsuranceOption(body.Insurance)
	if err != nil {
		respondBadRequest(w, "unknown insurance option")
		return
	}

	participants := make([]domain.Participant, len(body.Participants))
	for i, p := range body.Participants {
		dob, err := time.Parse(dateLayout, p.DateOfBirth)
		if err != nil {
			respondBadRequest(w, "participant date_of_birth must be a YYYY-MM-DD date")
			return
		}
		participants[i] = domain.Participant{
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			DateOfBirth: dob,
		}
	}

	result, err := s.bookings.Admit(r.Context(), service.AdmitRequest{
		TripID:           tripID,
		TravelerID:       body.TravelerID,
		TravelerName:     body.TravelerName,
		TravelerEmail:    body.TravelerEmail,
		DepartureAirport: body.DepartureAirport,
		Insurance:        insurance,
		Participants:     participants,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, AdmissionResponse{
		Booking: bookingToResponse(result.Booking),
		Payment: paymentToResponse(result.Payment),
		Cost: CostResponse{
			TripCost:      result.Cost.TripCost,
			InsuranceCost: result.Cost.InsuranceCost,
			TotalCost:     result.Cost.TotalCost,
			Currency:      result.Cost.Currency,
		},
	})
}

// GetBooking handles GET /bookings/{id}.
func (s *Server) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid booking id")
		return
	}

	booking, err := s.bookings.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, bookingToResponse(booking))
}

// ConfirmBookingPayment handles POST /bookings/{id}/confirm.
func (s *Server) ConfirmBookingPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondBadRequest(w, "invalid booking id")
		return
	}

	payment, err := s.bookings.ConfirmPayment(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, paymentToResponse(payment))
}

// bookingToResponse converts a domain.Booking into its JSON shape.
func bookingToResponse(b domain.Booking) BookingResponse {
	participants := make([]ParticipantResponse, len(b.Participants))
	for i, p := range b.Participants {
		participants[i] = ParticipantResponse{
			ID:          p.ID,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			DateOfBirth: p.DateOfBirth.Format(dateLayout),
		}
	}
	return BookingResponse{
		ID:               b.ID,
		TripID:           b.TripID,
		TravelerID:       b.TravelerID,
		TravelerName:     b.TravelerName,
		TravelerEmail:    b.TravelerEmail,
		DepartureAirport: b.DepartureAirport,
		Insurance:        string(b.Insurance),
		BookedOn:         b.BookedOn,
		Participants:     participants,
	}
}

// paymentToResponse converts a domain.Payment into its JSON shape.
func paymentToResponse(p domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		Status:      string(p.Status),
		Amount:      p.AmountPaid,
		Insurance:   p.AmountInsurance,
		Currency:    p.Currency,
		ProviderRef: p.ProviderRef,
		ClientToken: p.ClientToken,
		MethodRef:   p.MethodRef,
	}
}
