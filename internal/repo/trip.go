// Package repo contains all database access logic for the Adventure Together
// booking engine. Each aggregate has its own file with an interface and a
// Postgres implementation. No business logic lives here — only SQL and type
// mapping. The exclusive-lock admission discipline is provided by Store in
// store.go.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lucamoretti/adventure-together/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, and lets
// Store reuse the same repos inside its locking transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows services to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id and timestamps populated). The trip must already be
	// opened: its state is stored as-is.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a trip with its itinerary and current participant
	// count. Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns all trips ordered by departure date ascending.
	List(ctx context.Context) ([]domain.Trip, error)

	// ListOpenForBooking returns all trips whose state accepts new bookings
	// (pending confirmation or confirmed open), ordered by departure date.
	// This is the input set for the periodic lifecycle sweep.
	ListOpenForBooking(ctx context.Context) ([]domain.Trip, error)

	// ListByState returns all trips currently in the given state,
	// ordered by departure date ascending.
	ListByState(ctx context.Context, state domain.TripState) ([]domain.Trip, error)

	// UpdateState overwrites the trip's lifecycle state.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	UpdateState(ctx context.Context, id uuid.UUID, state domain.TripState) error
}

// tripColumns is the shared select list for hydrating a domain.Trip together
// with its itinerary and its derived participant count. The count is summed
// inside the same statement so that, under Store's row lock, it reflects all
// committed bundles.
const tripColumns = `
	t.id, t.itinerary_id, t.planner_id,
	t.bookings_open_on, t.bookings_close_on, t.departure_date, t.return_date,
	t.price_per_participant, t.state, t.created_at, t.updated_at,
	i.title, i.description, i.duration_days, i.min_participants, i.max_participants,
	i.planner_id, i.created_at, i.updated_at,
	(SELECT count(*)
	   FROM participants p
	   JOIN bookings b ON b.id = p.booking_id
	  WHERE b.trip_id = t.id) AS participants`

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (itinerary_id, planner_id, bookings_open_on, bookings_close_on,
		                   departure_date, return_date, price_per_participant, state)
		VALUES (@itinerary_id, @planner_id, @bookings_open_on, @bookings_close_on,
		        @departure_date, @return_date, @price_per_participant, @state)
		RETURNING id, created_at, updated_at`

	args := pgx.NamedArgs{
		"itinerary_id":          trip.ItineraryID,
		"planner_id":            trip.PlannerID,
		"bookings_open_on":      trip.BookingsOpenOn,
		"bookings_close_on":     trip.BookingsCloseOn,
		"departure_date":        trip.DepartureDate,
		"return_date":           trip.ReturnDate,
		"price_per_participant": trip.PricePerParticipant,
		"state":                 string(trip.State),
	}

	var id pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id, &trip.CreatedAt, &trip.UpdatedAt); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	trip.ID = uuid.UUID(id.Bytes)
	return trip, nil
}

// GetByID retrieves a trip by primary key, hydrated with its itinerary and
// participant count.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + `
		FROM trips t
		JOIN itineraries i ON i.id = t.itinerary_id
		WHERE t.id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	trip, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return trip, nil
}

// List returns all trips ordered by departure date ascending (soonest first).
func (r *pgTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + `
		FROM trips t
		JOIN itineraries i ON i.id = t.itinerary_id
		ORDER BY t.departure_date ASC`

	return r.queryTrips(ctx, "List", q, nil)
}

// ListOpenForBooking returns all trips still accepting bookings.
func (r *pgTripRepo) ListOpenForBooking(ctx context.Context) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + `
		FROM trips t
		JOIN itineraries i ON i.id = t.itinerary_id
		WHERE t.state = ANY(@states)
		ORDER BY t.departure_date ASC`

	states := []string{string(domain.StatePendingConfirmation), string(domain.StateConfirmedOpen)}
	return r.queryTrips(ctx, "ListOpenForBooking", q, pgx.NamedArgs{"states": states})
}

// ListByState returns all trips in the given lifecycle state.
func (r *pgTripRepo) ListByState(ctx context.Context, state domain.TripState) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + `
		FROM trips t
		JOIN itineraries i ON i.id = t.itinerary_id
		WHERE t.state = @state
		ORDER BY t.departure_date ASC`

	return r.queryTrips(ctx, "ListByState", q, pgx.NamedArgs{"state": string(state)})
}

// UpdateState overwrites the trip's lifecycle state tag.
func (r *pgTripRepo) UpdateState(ctx context.Context, id uuid.UUID, state domain.TripState) error {
	const q = `
		UPDATE trips
		SET state = @state, updated_at = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "state": string(state)})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.UpdateState: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.UpdateState: %w", domain.ErrNotFound)
	}
	return nil
}

// queryTrips runs a multi-row trip query and scans every row.
func (r *pgTripRepo) queryTrips(ctx context.Context, op, q string, args any) ([]domain.Trip, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if args != nil {
		rows, err = r.db.Query(ctx, q, args)
	} else {
		rows, err = r.db.Query(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.%s: scan: %w", op, err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.%s: rows: %w", op, err)
	}

	return trips, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single row of tripColumns into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t                 domain.Trip
		id, itinID        pgtype.UUID
		plannerID         pgtype.UUID
		itinPlannerID     pgtype.UUID
		openOn, closeOn   pgtype.Date
		depDate, retDate  pgtype.Date
		state             string
	)

	err := s.Scan(
		&id, &itinID, &plannerID,
		&openOn, &closeOn, &depDate, &retDate,
		&t.PricePerParticipant, &state, &t.CreatedAt, &t.UpdatedAt,
		&t.Itinerary.Title, &t.Itinerary.Description, &t.Itinerary.DurationDays,
		&t.Itinerary.MinParticipants, &t.Itinerary.MaxParticipants,
		&itinPlannerID, &t.Itinerary.CreatedAt, &t.Itinerary.UpdatedAt,
		&t.Participants,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.ItineraryID = uuid.UUID(itinID.Bytes)
	t.PlannerID = uuid.UUID(plannerID.Bytes)
	t.BookingsOpenOn = openOn.Time
	t.BookingsCloseOn = closeOn.Time
	t.DepartureDate = depDate.Time
	t.ReturnDate = retDate.Time
	t.Itinerary.ID = t.ItineraryID
	t.Itinerary.PlannerID = uuid.UUID(itinPlannerID.Bytes)

	t.State, err = domain.ParseTripState(state)
	if err != nil {
		return domain.Trip{}, err
	}

	return t, nil
}
