package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lucamoretti/adventure-together/internal/domain"
	"github.com/lucamoretti/adventure-together/internal/handler"
	"github.com/lucamoretti/adventure-together/internal/service"
)

// Hand-written test doubles for the handler's service interfaces.
// Set only the method fields your test needs.

type mockItineraryServicer struct {
	create  func(ctx context.Context, req service.CreateItineraryRequest) (domain.Itinerary, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Itinerary, error)
	list    func(ctx context.Context) ([]domain.Itinerary, error)
}

func (m *mockItineraryServicer) Create(ctx context.Context, req service.CreateItineraryRequest) (domain.Itinerary, error) {
	return m.create(ctx, req)
}
func (m *mockItineraryServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Itinerary, error) {
	return m.getByID(ctx, id)
}
func (m *mockItineraryServicer) List(ctx context.Context) ([]domain.Itinerary, error) {
	return m.list(ctx)
}

var _ handler.ItineraryServicer = (*mockItineraryServicer)(nil)

type mockTripServicer struct {
	create             func(ctx context.Context, req service.CreateTripRequest) (domain.Trip, error)
	getByID            func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	list               func(ctx context.Context) ([]domain.Trip, error)
	listOpenForBooking func(ctx context.Context) ([]domain.Trip, error)
	listByState        func(ctx context.Context, state domain.TripState) ([]domain.Trip, error)
}

func (m *mockTripServicer) Create(ctx context.Context, req service.CreateTripRequest) (domain.Trip, error) {
	return m.create(ctx, req)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) List(ctx context.Context) ([]domain.Trip, error) { return m.list(ctx) }
func (m *mockTripServicer) ListOpenForBooking(ctx context.Context) ([]domain.Trip, error) {
	return m.listOpenForBooking(ctx)
}
func (m *mockTripServicer) ListByState(ctx context.Context, state domain.TripState) ([]domain.Trip, error) {
	return m.listByState(ctx, state)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockBookingServicer struct {
	admit          func(ctx context.Context, req service.AdmitRequest) (service.AdmitResult, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	confirmPayment func(ctx context.Context, bookingID uuid.UUID) (domain.Payment, error)
}

func (m *mockBookingServicer) Admit(ctx context.Context, req service.AdmitRequest) (service.AdmitResult, error) {
	return m.admit(ctx, req)
}
func (m *mockBookingServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookingServicer) ConfirmPayment(ctx context.Context, bookingID uuid.UUID) (domain.Payment, error) {
	return m.confirmPayment(ctx, bookingID)
}

var _ handler.BookingServicer = (*mockBookingServicer)(nil)

type mockLifecycleServicer struct {
	evaluate func(ctx context.Context, tripID uuid.UUID) (domain.TripState, error)
	cancel   func(ctx context.Context, tripID uuid.UUID) (domain.TripState, error)
}

func (m *mockLifecycleServicer) Evaluate(ctx context.Context, tripID uuid.UUID) (domain.TripState, error) {
	return m.evaluate(ctx, tripID)
}
func (m *mockLifecycleServicer) Cancel(ctx context.Context, tripID uuid.UUID) (domain.TripState, error) {
	return m.cancel(ctx, tripID)
}

var _ handler.LifecycleServicer = (*mockLifecycleServicer)(nil)

type mockExportServicer struct {
	manifest func(ctx context.Context) ([]domain.ManifestRow, error)
}

func (m *mockExportServicer) Manifest(ctx context.Context) ([]domain.ManifestRow, error) {
	return m.manifest(ctx)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// serverDeps bundles the mocks so tests override only what they exercise.
type serverDeps struct {
	itineraries *mockItineraryServicer
	trips       *mockTripServicer
	bookings    *mockBookingServicer
	lifecycle   *mockLifecycleServicer
	export      *mockExportServicer
}

// newTestServer mounts a Server over the given mocks and returns its routes.
func newTestServer(deps serverDeps) http.Handler {
	if deps.itineraries == nil {
		deps.itineraries = &mockItineraryServicer{}
	}
	if deps.trips == nil {
		deps.trips = &mockTripServicer{}
	}
	if deps.bookings == nil {
		deps.bookings = &mockBookingServicer{}
	}
	if deps.lifecycle == nil {
		deps.lifecycle = &mockLifecycleServicer{}
	}
	if deps.export == nil {
		deps.export = &mockExportServicer{}
	}
	return handler.NewServer(deps.itineraries, deps.trips, deps.bookings, deps.lifecycle, deps.export).Routes()
}

// doJSON performs a request against h and decodes the JSON response into out.
func doJSON(t *testing.T, h http.Handler, req *http.Request, out any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
	}
	return rec
}

// TestGetHealth_returns200WithOKStatus verifies that GET /healthz returns
// HTTP 200 and a JSON body of {"status":"ok"}.
func TestGetHealth_returns200WithOKStatus(t *testing.T) {
	h := newTestServer(serverDeps{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	var body map[string]string
	rec := doJSON(t, h, req, &body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", body["status"])
}
