// Package service contains the business logic for the Adventure Together
// booking engine. Services validate inputs, enforce business rules, and
// orchestrate repo calls. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/lucamoretti/adventure-together/internal/domain"
	"github.com/lucamoretti/adventure-together/internal/notify"
	"github.com/lucamoretti/adventure-together/internal/repo"
)

// LifecycleService drives the trip state machine: it re-evaluates trips
// after admissions and on the periodic sweep, applies manual admin cancels,
// and broadcasts a notification to every booking when a transition happens.
//
// Every evaluation runs under the trip's exclusive lock so it cannot race
// with an in-flight admission; the broadcast runs strictly after the lock
// is released, and its failures are logged and swallowed — a transition is
// never rolled back because mail could not be delivered.
type LifecycleService struct {
	store    repo.TripLocker
	trips    repo.TripRepo
	notifier notify.Notifier
	log      *slog.Logger
	baseURL  string
	now      func() time.Time
}

// NewLifecycleService constructs a LifecycleService. now is the clock used
// for date comparisons; pass nil to use time.Now.
func NewLifecycleService(store repo.TripLocker, trips repo.TripRepo, notifier notify.Notifier, log *slog.Logger, baseURL string, now func() time.Time) *LifecycleService {
	if now == nil {
		now = time.Now
	}
	return &LifecycleService{
		store:    store,
		trips:    trips,
		notifier: notifier,
		log:      log,
		baseURL:  baseURL,
		now:      now,
	}
}

// transition is the snapshot captured inside the lock window so the
// broadcast can run after the lock is released.
type transition struct {
	trip     domain.Trip
	from, to domain.TripState
	bookings []domain.Booking
}

func (t transition) changed() bool { return t.from != t.to }

// Evaluate re-runs the state machine for one trip, persisting the new state
// if a transition fires and notifying all bookings afterwards.
// Returns the state the trip is in after evaluation.
func (s *LifecycleService) Evaluate(ctx context.Context, tripID uuid.UUID) (domain.TripState, error) {
	tr, err := s.transition(ctx, tripID, func(trip domain.Trip) (domain.TripState, error) {
		return trip.Evaluate(s.now())
	})
	if err != nil {
		return "", fmt.Errorf("service.LifecycleService.Evaluate: %w", err)
	}

	if tr.changed() {
		s.broadcast(ctx, tr)
	}
	return tr.to, nil
}

// Cancel applies a manual admin cancellation. Allowed only while the trip is
// pending confirmation or expired; cancelling an already-cancelled trip is
// an idempotent no-op. Returns the resulting state, or
// domain.ErrIllegalTransition when the trip cannot be cancelled.
func (s *LifecycleService) Cancel(ctx context.Context, tripID uuid.UUID) (domain.TripState, error) {
	tr, err := s.transition(ctx, tripID, func(trip domain.Trip) (domain.TripState, error) {
		return trip.NextOnCancel()
	})
	if err != nil {
		return "", fmt.Errorf("service.LifecycleService.Cancel: %w", err)
	}

	if tr.changed() {
		s.broadcast(ctx, tr)
	}
	return tr.to, nil
}

// Sweep re-evaluates every trip still open for booking. It is the periodic
// self-healing backstop for admissions whose post-commit evaluation failed.
// Per-trip failures are logged and do not stop the sweep.
// Returns the number of trips that transitioned.
func (s *LifecycleService) Sweep(ctx context.Context) (int, error) {
	trips, err := s.trips.ListOpenForBooking(ctx)
	if err != nil {
		return 0, fmt.Errorf("service.LifecycleService.Sweep: %w", err)
	}

	transitioned := 0
	for _, trip := range trips {
		before := trip.State
		after, err := s.Evaluate(ctx, trip.ID)
		if err != nil {
			s.log.Error("sweep: trip evaluation failed",
				"trip_id", trip.ID, "error", err)
			continue
		}
		if after != before {
			transitioned++
			s.log.Info("sweep: trip transitioned",
				"trip_id", trip.ID, "from", before, "to", after)
		}
	}
	return transitioned, nil
}

// Run drives Sweep on a fixed interval until ctx is cancelled. The cadence
// is a deployment parameter (SWEEP_INTERVAL); daily is typical.
func (s *LifecycleService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("lifecycle sweep started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("lifecycle sweep stopped")
			return
		case <-ticker.C:
			if n, err := s.Sweep(ctx); err != nil {
				s.log.Error("lifecycle sweep failed", "error", err)
			} else if n > 0 {
				s.log.Info("lifecycle sweep complete", "transitioned", n)
			}
		}
	}
}

// transition runs next under the trip's lock, persists a state change if
// one fired, and captures the snapshot needed for the broadcast.
func (s *LifecycleService) transition(ctx context.Context, tripID uuid.UUID, next func(domain.Trip) (domain.TripState, error)) (transition, error) {
	var tr transition
	err := s.store.WithTripLock(ctx, tripID, func(ctx context.Context, tx repo.TripTx, trip domain.Trip) error {
		to, err := next(trip)
		if err != nil {
			return err
		}

		tr = transition{trip: trip, from: trip.State, to: to}
		if to == trip.State {
			return nil
		}

		if err := tx.UpdateTripState(ctx, trip.ID, to); err != nil {
			return err
		}
		tr.bookings, err = tx.ListBookings(ctx, trip.ID)
		return err
	})
	if err != nil {
		return transition{}, err
	}
	return tr, nil
}

// broadcast notifies every booking on the trip that it entered a new state.
// Each delivery failure is isolated; the failures are aggregated into one
// log line and never propagated.
func (s *LifecycleService) broadcast(ctx context.Context, tr transition) {
	tmpl := tr.to.MailTemplate()
	if tmpl == "" || s.notifier == nil {
		return
	}

	subject := "Update on your trip " + tr.trip.Itinerary.Title

	var errs error
	for _, b := range tr.bookings {
		data := map[string]any{
			"traveler":  b.TravelerName,
			"itinerary": tr.trip.Itinerary.Title,
			"departure": tr.trip.DepartureDate.Format("2006-01-02"),
			"homepage":  s.baseURL + "/home",
		}
		if err := s.notifier.Send(ctx, b.TravelerEmail, subject, tmpl, data); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		s.log.Warn("state-change broadcast incomplete",
			"trip_id", tr.trip.ID, "state", tr.to, "error", errs)
	}
}
