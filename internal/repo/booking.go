package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lucamoretti/adventure-together/internal/domain"
)

// BookingRepo defines the read-side persistence operations for Bookings.
// Writing a booking always happens as part of an admission bundle under the
// trip's row lock, so the write path lives on Store's TripTx instead.
type BookingRepo interface {
	// GetByID retrieves a booking with its participants.
	// Returns domain.ErrNotFound if no booking with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)

	// ListByTrip returns all bookings for a trip, each hydrated with its
	// participants, ordered by creation time ascending.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Booking, error)

	// GetPayment retrieves the payment record frozen for a booking.
	// Returns domain.ErrNotFound if the booking or its payment does not exist.
	GetPayment(ctx context.Context, bookingID uuid.UUID) (domain.Payment, error)

	// MarkPaymentPaid flips a booking's payment to paid and records the
	// provider's payment-method reference.
	// Returns domain.ErrNotFound if the booking has no payment record.
	MarkPaymentPaid(ctx context.Context, bookingID uuid.UUID, methodRef string) error
}

// pgBookingRepo is the Postgres implementation of BookingRepo.
type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const bookingColumns = `id, trip_id, traveler_id, traveler_name, traveler_email,
	departure_airport, insurance, booked_on, created_at`

// GetByID retrieves a booking by primary key, with its participants.
func (r *pgBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	booking, err := scanBooking(row)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", err)
	}

	booking.Participants, err = r.listParticipants(ctx, booking.ID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", err)
	}
	return booking, nil
}

// ListByTrip returns all bookings for a trip with their participants.
func (r *pgBookingRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE trip_id = @trip_id
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.BookingRepo.ListByTrip: scan: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByTrip: rows: %w", err)
	}

	for i := range bookings {
		bookings[i].Participants, err = r.listParticipants(ctx, bookings[i].ID)
		if err != nil {
			return nil, fmt.Errorf("repo.BookingRepo.ListByTrip: %w", err)
		}
	}

	return bookings, nil
}

// GetPayment retrieves the payment record for a booking.
func (r *pgBookingRepo) GetPayment(ctx context.Context, bookingID uuid.UUID) (domain.Payment, error) {
	const q = `
		SELECT id, booking_id, amount_paid, amount_insurance, currency,
		       status, provider_ref, client_token, method_ref, payment_date
		FROM payments
		WHERE booking_id = @booking_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"booking_id": bookingID})
	payment, err := scanPayment(row)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("repo.BookingRepo.GetPayment: %w", err)
	}
	return payment, nil
}

// MarkPaymentPaid records the provider confirmation on a booking's payment.
func (r *pgBookingRepo) MarkPaymentPaid(ctx context.Context, bookingID uuid.UUID, methodRef string) error {
	const q = `
		UPDATE payments
		SET status = @status, method_ref = @method_ref
		WHERE booking_id = @booking_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"booking_id": bookingID,
		"status":     string(domain.PaymentPaid),
		"method_ref": methodRef,
	})
	if err != nil {
		return fmt.Errorf("repo.BookingRepo.MarkPaymentPaid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BookingRepo.MarkPaymentPaid: %w", domain.ErrNotFound)
	}
	return nil
}

// listParticipants loads the participants owned by a booking. The id sort
// gives a stable order across calls, not insertion order: the keys are
// random UUIDs.
func (r *pgBookingRepo) listParticipants(ctx context.Context, bookingID uuid.UUID) ([]domain.Participant, error) {
	const q = `
		SELECT id, booking_id, first_name, last_name, date_of_birth
		FROM participants
		WHERE booking_id = @booking_id
		ORDER BY id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"booking_id": bookingID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		var (
			p       domain.Participant
			id, bid pgtype.UUID
			dob     pgtype.Date
		)
		if err := rows.Scan(&id, &bid, &p.FirstName, &p.LastName, &dob); err != nil {
			return nil, err
		}
		p.ID = uuid.UUID(id.Bytes)
		p.BookingID = uuid.UUID(bid.Bytes)
		p.DateOfBirth = dob.Time
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// scanBooking maps a single row of bookingColumns into a domain.Booking.
// Participants are loaded separately.
func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b                  domain.Booking
		id, tripID, travID pgtype.UUID
		bookedOn           pgtype.Date
		insurance          string
	)

	err := s.Scan(&id, &tripID, &travID, &b.TravelerName, &b.TravelerEmail,
		&b.DepartureAirport, &insurance, &bookedOn, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}

	b.ID = uuid.UUID(id.Bytes)
	b.TripID = uuid.UUID(tripID.Bytes)
	b.TravelerID = uuid.UUID(travID.Bytes)
	b.BookedOn = bookedOn.Time

	b.Insurance, err = domain.ParseInsuranceOption(insurance)
	if err != nil {
		return domain.Booking{}, err
	}

	return b, nil
}

// scanPayment maps a single payments row into a domain.Payment.
func scanPayment(s scanner) (domain.Payment, error) {
	var (
		p       domain.Payment
		id, bid pgtype.UUID
		status  string
		date    pgtype.Date
	)

	err := s.Scan(&id, &bid, &p.AmountPaid, &p.AmountInsurance, &p.Currency,
		&status, &p.ProviderRef, &p.ClientToken, &p.MethodRef, &date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Payment{}, domain.ErrNotFound
		}
		return domain.Payment{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.BookingID = uuid.UUID(bid.Bytes)
	p.Status = domain.PaymentStatus(status)
	p.PaymentDate = date.Time

	return p, nil
}
