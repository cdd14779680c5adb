package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lucamoretti/adventure-together/internal/domain"
)

// TripTx is the set of write operations available while holding a trip's
// exclusive row lock. Everything done through it commits or rolls back as
// one unit with the lock release.
type TripTx interface {
	// CreateBundle persists a booking, its participants, and its payment
	// record atomically, returning both with DB-generated fields populated.
	CreateBundle(ctx context.Context, booking domain.Booking, payment domain.Payment) (domain.Booking, domain.Payment, error)

	// UpdateTripState overwrites the locked trip's lifecycle state.
	UpdateTripState(ctx context.Context, tripID uuid.UUID, state domain.TripState) error

	// ListBookings returns the trip's bookings with participants, read
	// within the locking transaction so the snapshot is consistent with
	// the participant count on the locked trip.
	ListBookings(ctx context.Context, tripID uuid.UUID) ([]domain.Booking, error)
}

// TripLocker serializes units of work against a single trip aggregate.
// Implementations must guarantee that two concurrent calls for the same trip
// run strictly one after the other, while calls for different trips proceed
// independently.
type TripLocker interface {
	// WithTripLock loads the trip under an exclusive lock and runs fn with
	// it. The trip passed to fn carries the participant count as of the
	// lock acquisition, so capacity decisions made inside fn cannot race
	// with other admissions. If fn returns an error the transaction is
	// rolled back and the error returned unwrapped, so typed domain
	// rejections survive for errors.Is at the caller.
	WithTripLock(ctx context.Context, tripID uuid.UUID, fn func(ctx context.Context, tx TripTx, trip domain.Trip) error) error
}

// Store implements TripLocker over a pgx connection pool using
// SELECT ... FOR UPDATE on the trips row. The lock is held from the load
// until commit or rollback, which bounds it to exactly the admission (or
// re-evaluation) sequence — notification fan-out happens after release.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store backed by the provided pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithTripLock implements TripLocker.
func (s *Store) WithTripLock(ctx context.Context, tripID uuid.UUID, fn func(ctx context.Context, tx TripTx, trip domain.Trip) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.Store.WithTripLock: begin: %w", err)
	}
	// Rollback after commit is a harmless no-op; this guarantees the lock
	// is released on every error path.
	defer tx.Rollback(ctx)

	// Take the row lock first with a plain single-row select. The hydrating
	// read below joins and aggregates, which cannot carry FOR UPDATE.
	const lockQ = `SELECT id FROM trips WHERE id = @id FOR UPDATE`
	var locked pgtype.UUID
	if err := tx.QueryRow(ctx, lockQ, pgx.NamedArgs{"id": tripID}).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("repo.Store.WithTripLock: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("repo.Store.WithTripLock: lock: %w", err)
	}

	trip, err := NewTripRepo(tx).GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("repo.Store.WithTripLock: %w", err)
	}

	if err := fn(ctx, &tripTx{tx: tx}, trip); err != nil {
		// Returned as-is: fn's error is the caller's typed rejection.
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Store.WithTripLock: commit: %w", err)
	}
	return nil
}

// tripTx is the TripTx implementation bound to one locking transaction.
type tripTx struct {
	tx pgx.Tx
}

// CreateBundle inserts booking, participants, and payment in one shot.
// All three inserts share the surrounding transaction: a failure in any of
// them rolls back the whole admission.
func (t *tripTx) CreateBundle(ctx context.Context, booking domain.Booking, payment domain.Payment) (domain.Booking, domain.Payment, error) {
	const bookingQ = `
		INSERT INTO bookings (trip_id, traveler_id, traveler_name, traveler_email,
		                      departure_airport, insurance, booked_on)
		VALUES (@trip_id, @traveler_id, @traveler_name, @traveler_email,
		        @departure_airport, @insurance, @booked_on)
		RETURNING id, created_at`

	args := pgx.NamedArgs{
		"trip_id":           booking.TripID,
		"traveler_id":       booking.TravelerID,
		"traveler_name":     booking.TravelerName,
		"traveler_email":    booking.TravelerEmail,
		"departure_airport": booking.DepartureAirport,
		"insurance":         string(booking.Insurance),
		"booked_on":         booking.BookedOn,
	}

	var bookingID pgtype.UUID
	if err := t.tx.QueryRow(ctx, bookingQ, args).Scan(&bookingID, &booking.CreatedAt); err != nil {
		return domain.Booking{}, domain.Payment{}, fmt.Errorf("repo.TripTx.CreateBundle: booking: %w", err)
	}
	booking.ID = uuid.UUID(bookingID.Bytes)

	const participantQ = `
		INSERT INTO participants (booking_id, first_name, last_name, date_of_birth)
		VALUES (@booking_id, @first_name, @last_name, @date_of_birth)
		RETURNING id`

	for i := range booking.Participants {
		p := &booking.Participants[i]
		p.BookingID = booking.ID

		var pid pgtype.UUID
		err := t.tx.QueryRow(ctx, participantQ, pgx.NamedArgs{
			"booking_id":    p.BookingID,
			"first_name":    p.FirstName,
			"last_name":     p.LastName,
			"date_of_birth": p.DateOfBirth,
		}).Scan(&pid)
		if err != nil {
			return domain.Booking{}, domain.Payment{}, fmt.Errorf("repo.TripTx.CreateBundle: participant %d: %w", i+1, err)
		}
		p.ID = uuid.UUID(pid.Bytes)
	}

	const paymentQ = `
		INSERT INTO payments (booking_id, amount_paid, amount_insurance, currency,
		                      status, provider_ref, client_token, payment_date)
		VALUES (@booking_id, @amount_paid, @amount_insurance, @currency,
		        @status, @provider_ref, @client_token, @payment_date)
		RETURNING id`

	payment.BookingID = booking.ID
	var paymentID pgtype.UUID
	err := t.tx.QueryRow(ctx, paymentQ, pgx.NamedArgs{
		"booking_id":       payment.BookingID,
		"amount_paid":      payment.AmountPaid,
		"amount_insurance": payment.AmountInsurance,
		"currency":         payment.Currency,
		"status":           string(payment.Status),
		"provider_ref":     payment.ProviderRef,
		"client_token":     payment.ClientToken,
		"payment_date":     payment.PaymentDate,
	}).Scan(&paymentID)
	if err != nil {
		return domain.Booking{}, domain.Payment{}, fmt.Errorf("repo.TripTx.CreateBundle: payment: %w", err)
	}
	payment.ID = uuid.UUID(paymentID.Bytes)

	return booking, payment, nil
}

// UpdateTripState overwrites the locked trip's state within the transaction.
func (t *tripTx) UpdateTripState(ctx context.Context, tripID uuid.UUID, state domain.TripState) error {
	return NewTripRepo(t.tx).UpdateState(ctx, tripID, state)
}

// ListBookings reads the trip's bookings within the transaction.
func (t *tripTx) ListBookings(ctx context.Context, tripID uuid.UUID) ([]domain.Booking, error) {
	return NewBookingRepo(t.tx).ListByTrip(ctx, tripID)
}
