// Package handler implements the HTTP handlers for the Adventure Together API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, booking.go, etc.) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lucamoretti/adventure-together/internal/domain"
	"github.com/lucamoretti/adventure-together/internal/service"
)

// ItineraryServicer defines the business operations the itinerary handler
// depends on. Defining the interface here (in the consumer package) follows
// the Go convention: "accept interfaces, return concrete types". It lets
// handler tests inject a mock without touching the database or service layer.
type ItineraryServicer interface {
	Create(ctx context.Context, req service.CreateItineraryRequest) (domain.Itinerary, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Itinerary, error)
	List(ctx context.Context) ([]domain.Itinerary, error)
}

// TripServicer defines the business operations the trip handler depends on.
type TripServicer interface {
	Create(ctx context.Context, req service.CreateTripRequest) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	ListOpenForBooking(ctx context.Context) ([]domain.Trip, error)
	ListByState(ctx context.Context, state domain.TripState) ([]domain.Trip, error)
}

// BookingServicer defines the admission and payment operations the booking
// handler depends on.
type BookingServicer interface {
	Admit(ctx context.Context, req service.AdmitRequest) (service.AdmitResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	ConfirmPayment(ctx context.Context, bookingID uuid.UUID) (domain.Payment, error)
}

// LifecycleServicer defines the state-machine operations the trip handler
// depends on for cancellation and on-demand re-evaluation.
type LifecycleServicer interface {
	Evaluate(ctx context.Context, tripID uuid.UUID) (domain.TripState, error)
	Cancel(ctx context.Context, tripID uuid.UUID) (domain.TripState, error)
}

// ExportServicer defines the manifest operation the export handler depends on.
type ExportServicer interface {
	Manifest(ctx context.Context) ([]domain.ManifestRow, error)
}

// Server holds every handler's dependencies. Wire it in main.go and mount
// Routes() on the root router.
type Server struct {
	itineraries ItineraryServicer
	trips       TripServicer
	bookings    BookingServicer
	lifecycle   LifecycleServicer
	export      ExportServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(itineraries ItineraryServicer, trips TripServicer, bookings BookingServicer, lifecycle LifecycleServicer, export ExportServicer) *Server {
	return &Server{
		itineraries: itineraries,
		trips:       trips,
		bookings:    bookings,
		lifecycle:   lifecycle,
		export:      export,
	}
}

// Routes returns the API route table. Middleware is wired by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/itineraries", func(r chi.Router) {
		r.Post("/", s.CreateItinerary)
		r.Get("/", s.ListItineraries)
		r.Get("/{id}", s.GetItinerary)
	})

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)
		r.Get("/{id}", s.GetTrip)
		r.Post("/{id}/cancel", s.CancelTrip)
		r.Post("/{id}/evaluate", s.EvaluateTrip)
		r.Post("/{id}/bookings", s.CreateBooking)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Get("/{id}", s.GetBooking)
		r.Post("/{id}/confirm", s.ConfirmBookingPayment)
	})

	r.Get("/export", s.GetExport)

	return r
}
