package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lucamoretti/adventure-together/internal/domain"
	"github.com/lucamoretti/adventure-together/internal/handler"
	"github.com/lucamoretti/adventure-together/internal/service"
)

// bookingBody builds a valid JSON admission body for two participants.
func bookingBody(travelerID uuid.UUID, insurance string) string {
	return fmt.Sprintf(`{
		"traveler_id": %q,
		"traveler_name": "Mara Jensen",
		"traveler_email": "mara@example.com",
		"departure_airport": "AMS",
		"insurance": %q,
		"participants": [
			{"first_name": "Mara", "last_name": "Jensen", "date_of_birth": "1990-03-14"},
			{"first_name": "Theo", "last_name": "Jensen", "date_of_birth": "1992-11-02"}
		]
	}`, travelerID, insurance)
}

func TestCreateBooking_returns201WithAdmissionResult(t *testing.T) {
	tripID := uuid.New()
	travelerID := uuid.New()
	bookingID := uuid.New()

	bookings := &mockBookingServicer{
		admit: func(_ context.Context, req service.AdmitRequest) (service.AdmitResult, error) {
			require.Equal(t, tripID, req.TripID)
			require.Equal(t, travelerID, req.TravelerID)
			require.Equal(t, domain.InsuranceLuggage, req.Insurance)
			require.Len(t, req.Participants, 2)
			require.Equal(t, "Theo", req.Participants[1].FirstName)
			require.Equal(t, 1990, req.Participants[0].DateOfBirth.Year())
			return service.AdmitResult{
				Booking: domain.Booking{
					ID:            bookingID,
					TripID:        tripID,
					TravelerID:    travelerID,
					TravelerName:  req.TravelerName,
					TravelerEmail: req.TravelerEmail,
					Insurance:     req.Insurance,
					BookedOn:      time.Now(),
					Participants:  req.Participants,
				},
				Payment: domain.Payment{
					ID:              uuid.New(),
					BookingID:       bookingID,
					AmountPaid:      1000,
					AmountInsurance: 140,
					Currency:        "eur",
					Status:          domain.PaymentPending,
					ProviderRef:     "order_abc",
					ClientToken:     "tok_test",
				},
				Cost: service.CostBreakdown{
					TripCost:      1000,
					InsuranceCost: 140,
					TotalCost:     1140,
					Currency:      "eur",
				},
			}, nil
		},
	}
	h := newTestServer(serverDeps{bookings: bookings})

	req := httptest.NewRequest(http.MethodPost, "/trips/"+tripID.String()+"/bookings",
		strings.NewReader(bookingBody(travelerID, "luggage")))
	var got handler.AdmissionResponse
	rec := doJSON(t, h, req, &got)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, bookingID, got.Booking.ID)
	require.Equal(t, "luggage", got.Booking.Insurance)
	require.Len(t, got.Booking.Participants, 2)
	require.Equal(t, "1990-03-14", got.Booking.Participants[0].DateOfBirth)
	require.Equal(t, "pending", got.Payment.Status)
	require.Equal(t, "tok_test", got.Payment.ClientToken)
	require.Equal(t, 1140.0, got.Cost.TotalCost)
	require.Equal(t, "eur", got.Cost.Currency)
}

func TestCreateBooking_returns400OnUnknownInsurance(t *testing.T) {
	h := newTestServer(serverDeps{})

	req := httptest.NewRequest(http.MethodPost, "/trips/"+uuid.NewString()+"/bookings",
		strings.NewReader(bookingBody(uuid.New(), "platinum")))
	var got handler.ErrorResponse
	rec := doJSON(t, h, req, &got)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, got.Error.Message, "insurance")
}

func TestCreateBooking_returns400OnBadTripID(t *testing.T) {
	h := newTestServer(serverDeps{})

	req := httptest.NewRequest(http.MethodPost, "/trips/not-a-uuid/bookings",
		strings.NewReader(bookingBody(uuid.New(), "none")))
	rec := doJSON(t, h, req, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking_returns400OnBadDateOfBirth(t *testing.T) {
	h := newTestServer(serverDeps{})

	body := fmt.Sprintf(`{
		"traveler_id": %q,
		"traveler_email": "mara@example.com",
		"departure_airport": "AMS",
		"insurance": "none",
		"participants": [{"first_name": "Mara", "last_name": "Jensen", "date_of_birth": "14/03/1990"}]
	}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/trips/"+uuid.NewString()+"/bookings",
		strings.NewReader(body))
	var got handler.ErrorResponse
	rec := doJSON(t, h, req, &got)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, got.Error.Message, "date_of_birth")
}

func TestCreateBooking_returns409WhenCapacityExhausted(t *testing.T) {
	bookings := &mockBookingServicer{
		admit: func(_ context.Context, _ service.AdmitRequest) (service.AdmitResult, error) {
			return service.AdmitResult{}, fmt.Errorf("service.BookingService.Admit: %w: 1 seat left, 2 requested", domain.ErrInsufficientCapacity)
		},
	}
	h := newTestServer(serverDeps{bookings: bookings})

	req := httptest.NewRequest(http.MethodPost, "/trips/"+uuid.NewString()+"/bookings",
		strings.NewReader(bookingBody(uuid.New(), "none")))
	var got handler.ErrorResponse
	rec := doJSON(t, h, req, &got)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "insufficient_capacity", got.Error.Code)
}

func TestCreateBooking_returns409WhenTripClosed(t *testing.T) {
	bookings := &mockBookingServicer{
		admit: func(_ context.Context, _ service.AdmitRequest) (service.AdmitResult, error) {
			return service.AdmitResult{}, fmt.Errorf("service.BookingService.Admit: %w", domain.ErrTripNotBookable)
		},
	}
	h := newTestServer(serverDeps{bookings: bookings})

	req := httptest.NewRequest(http.MethodPost, "/trips/"+uuid.NewString()+"/bookings",
		strings.NewReader(bookingBody(uuid.New(), "none")))
	var got handler.ErrorResponse
	rec := doJSON(t, h, req, &got)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "trip_not_bookable", got.Error.Code)
}

func TestCreateBooking_returns422OnEmptyParty(t *testing.T) {
	bookings := &mockBookingServicer{
		admit: func(_ context.Context, _ service.AdmitRequest) (service.AdmitResult, error) {
			return service.AdmitResult{}, fmt.Errorf("service.BookingService.Admit: %w", domain.ErrInvalidPartySize)
		},
	}
	h := newTestServer(serverDeps{bookings: bookings})

	req := httptest.NewRequest(http.MethodPost, "/trips/"+uuid.NewString()+"/bookings",
		strings.NewReader(bookingBody(uuid.New(), "none")))
	rec := doJSON(t, h, req, nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateBooking_returns502WhenPaymentDeclined(t *testing.T) {
	bookings := &mockBookingServicer{
		admit: func(_ context.Context, _ service.AdmitRequest) (service.AdmitResult, error) {
			return service.AdmitResult{}, fmt.Errorf("service.BookingService.Admit: %w: provider unavailable", domain.ErrPaymentDeclined)
		},
	}
	h := newTestServer(serverDeps{bookings: bookings})

	req := httptest.NewRequest(http.MethodPost, "/trips/"+uuid.NewString()+"/bookings",
		strings.NewReader(bookingBody(uuid.New(), "full")))
	var got handler.ErrorResponse
	rec := doJSON(t, h, req, &got)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "payment_declined", got.Error.Code)
}

func TestGetBooking_returnsBooking(t *testing.T) {
	booking := domain.Booking{
		ID:            uuid.New(),
		TripID:        uuid.New(),
		TravelerID:    uuid.New(),
		TravelerEmail: "mara@example.com",
		Insurance:     domain.InsuranceNone,
		BookedOn:      time.Now(),
	}
	bookings := &mockBookingServicer{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Booking, error) {
			require.Equal(t, booking.ID, id)
			return booking, nil
		},
	}
	h := newTestServer(serverDeps{bookings: bookings})

	req := httptest.NewRequest(http.MethodGet, "/bookings/"+booking.ID.String(), nil)
	var got handler.BookingResponse
	rec := doJSON(t, h, req, &got)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, booking.ID, got.ID)
	require.Equal(t, "none", got.Insurance)
}

func TestConfirmBookingPayment_returnsPaidPayment(t *testing.T) {
	bookingID := uuid.New()
	bookings := &mockBookingServicer{
		confirmPayment: func(_ context.Context, id uuid.UUID) (domain.Payment, error) {
			require.Equal(t, bookingID, id)
			return domain.Payment{
				ID:        uuid.New(),
				BookingID: bookingID,
				Status:    domain.PaymentPaid,
				MethodRef: "pay_xyz",
			}, nil
		},
	}
	h := newTestServer(serverDeps{bookings: bookings})

	req := httptest.NewRequest(http.MethodPost, "/bookings/"+bookingID.String()+"/confirm", nil)
	var got handler.PaymentResponse
	rec := doJSON(t, h, req, &got)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "paid", got.Status)
	require.Equal(t, "pay_xyz", got.MethodRef)
}

func TestConfirmBookingPayment_returns502WhenProviderFails(t *testing.T) {
	bookings := &mockBookingServicer{
		confirmPayment: func(_ context.Context, _ uuid.UUID) (domain.Payment, error) {
			return domain.Payment{}, fmt.Errorf("service.BookingService.ConfirmPayment: %w", domain.ErrPaymentDeclined)
		},
	}
	h := newTestServer(serverDeps{bookings: bookings})

	req := httptest.NewRequest(http.MethodPost, "/bookings/"+uuid.NewString()+"/confirm", nil)
	rec := doJSON(t, h, req, nil)

	require.Equal(t, http.StatusBadGateway, rec.Code)
}
