package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lucamoretti/adventure-together/internal/domain"
	"github.com/lucamoretti/adventure-together/internal/notify"
	"github.com/lucamoretti/adventure-together/internal/payment"
	"github.com/lucamoretti/adventure-together/internal/repo"
)

// paymentTimeout bounds the remote payment-provider call so a stalled
// provider cannot hold the trip's row lock indefinitely.
const paymentTimeout = 15 * time.Second

// AdmitRequest carries everything needed to admit one booking.
type AdmitRequest struct {
	TripID           uuid.UUID
	TravelerID       uuid.UUID
	TravelerName     string
	TravelerEmail    string
	DepartureAirport string
	Insurance        domain.InsuranceOption
	Participants     []domain.Participant
}

// CostBreakdown is the booking's cost as frozen at admission time,
// rounded to two decimals.
type CostBreakdown struct {
	TripCost      float64
	InsuranceCost float64
	TotalCost     float64
	Currency      string
}

// AdmitResult bundles the persisted booking, its payment record (with the
// provider's client-confirmable handle), and the cost breakdown.
type AdmitResult struct {
	Booking domain.Booking
	Payment domain.Payment
	Cost    CostBreakdown
}

// BookingService is the admission orchestrator: it coordinates the capacity
// guard, the cost model, the payment collaborator, and the trip lifecycle
// to admit one booking atomically.
type BookingService struct {
	store     repo.TripLocker
	bookings  repo.BookingRepo
	gateway   payment.Gateway
	lifecycle *LifecycleService
	notifier  notify.Notifier
	log       *slog.Logger
	currency  string
	baseURL   string
	now       func() time.Time
}

// NewBookingService constructs a BookingService. now is the clock used for
// booking dates; pass nil to use time.Now.
func NewBookingService(store repo.TripLocker, bookings repo.BookingRepo, gateway payment.Gateway, lifecycle *LifecycleService, notifier notify.Notifier, log *slog.Logger, currency, baseURL string, now func() time.Time) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		store:     store,
		bookings:  bookings,
		gateway:   gateway,
		lifecycle: lifecycle,
		notifier:  notifier,
		log:       log,
		currency:  currency,
		baseURL:   baseURL,
		now:       now,
	}
}

// Admit runs the admission sequence for one booking:
//
//  1. load the trip under its exclusive row lock
//  2. capacity check against the locked participant count
//  3. cost computation (base + selected insurance decorators)
//  4. payment hold via the provider — failure aborts everything
//  5. atomic persist of booking + participants + payment
//  6. trip state re-evaluation in a fresh lock window
//
// Steps 1–5 share one transaction: any failure rolls the whole admission
// back and nothing is visible. Step 6 runs after the booking committed, so
// its failure can never undo the financially binding booking — it is logged
// and left to the periodic sweep to reconcile.
//
// Rejections are typed: domain.ErrTripNotBookable, ErrInsufficientCapacity,
// ErrInvalidPartySize, ErrPaymentDeclined, ErrValidation, ErrNotFound.
func (s *BookingService) Admit(ctx context.Context, req AdmitRequest) (AdmitResult, error) {
	booking := domain.Booking{
		TripID:           req.TripID,
		TravelerID:       req.TravelerID,
		TravelerName:     req.TravelerName,
		TravelerEmail:    req.TravelerEmail,
		DepartureAirport: req.DepartureAirport,
		Insurance:        req.Insurance,
		BookedOn:         s.now(),
		Participants:     req.Participants,
	}
	if err := booking.Validate(); err != nil {
		return AdmitResult{}, fmt.Errorf("service.BookingService.Admit: %w", err)
	}

	var (
		result AdmitResult
		onTrip domain.Trip
	)
	err := s.store.WithTripLock(ctx, req.TripID, func(ctx context.Context, tx repo.TripTx, trip domain.Trip) error {
		onTrip = trip

		if err := trip.CheckCapacity(booking.PartySize()); err != nil {
			return err
		}

		cost := booking.Cost(trip.PricePerParticipant)
		total := cost.TotalCost()

		holdCtx, cancel := context.WithTimeout(ctx, paymentTimeout)
		defer cancel()
		hold, err := s.gateway.CreateHold(holdCtx, total, s.currency, map[string]string{
			"trip_id":     trip.ID.String(),
			"traveler_id": req.TravelerID.String(),
			"itinerary":   trip.Itinerary.Title,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPaymentDeclined, err)
		}

		pay := domain.Payment{
			AmountPaid:      domain.RoundMoney(total),
			AmountInsurance: domain.RoundMoney(cost.InsuranceCost()),
			Currency:        s.currency,
			Status:          domain.PaymentPending,
			ProviderRef:     hold.ID,
			ClientToken:     hold.ClientToken,
			PaymentDate:     s.now(),
		}

		persisted, persistedPay, err := tx.CreateBundle(ctx, booking, pay)
		if err != nil {
			return err
		}

		result = AdmitResult{
			Booking: persisted,
			Payment: persistedPay,
			Cost: CostBreakdown{
				TripCost:      domain.RoundMoney(cost.TripCost()),
				InsuranceCost: domain.RoundMoney(cost.InsuranceCost()),
				TotalCost:     domain.RoundMoney(total),
				Currency:      s.currency,
			},
		}
		return nil
	})
	if err != nil {
		return AdmitResult{}, fmt.Errorf("service.BookingService.Admit: %w", err)
	}

	// The booking is committed and binding. Re-evaluation and mail are
	// best-effort from here on; the sweep reconciles missed transitions.
	if _, err := s.lifecycle.Evaluate(ctx, req.TripID); err != nil {
		s.log.Error("post-admission state evaluation failed; sweep will reconcile",
			"trip_id", req.TripID, "booking_id", result.Booking.ID, "error", err)
	}

	s.sendConfirmation(ctx, onTrip, result)

	return result, nil
}

// ConfirmPayment finalizes the provider hold for a booking and marks its
// payment record paid. Called by the checkout completion flow once the
// client has confirmed the hold on the provider side.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID uuid.UUID) (domain.Payment, error) {
	pay, err := s.bookings.GetPayment(ctx, bookingID)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("service.BookingService.ConfirmPayment: %w", err)
	}
	if pay.Status == domain.PaymentPaid {
		return pay, nil
	}

	confirmCtx, cancel := context.WithTimeout(ctx, paymentTimeout)
	defer cancel()
	conf, err := s.gateway.Confirm(confirmCtx, pay.ProviderRef)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("service.BookingService.ConfirmPayment: %w: %v", domain.ErrPaymentDeclined, err)
	}
	// A non-error response can still describe an unsettled hold (the client
	// never completed checkout). Only a settled hold marks the record paid.
	if !conf.Paid() {
		return domain.Payment{}, fmt.Errorf("service.BookingService.ConfirmPayment: %w: hold %s is %s, not settled",
			domain.ErrPaymentDeclined, pay.ProviderRef, conf.Status)
	}

	if err := s.bookings.MarkPaymentPaid(ctx, bookingID, conf.MethodRef); err != nil {
		return domain.Payment{}, fmt.Errorf("service.BookingService.ConfirmPayment: %w", err)
	}

	pay.Status = domain.PaymentPaid
	pay.MethodRef = conf.MethodRef
	return pay, nil
}

// GetByID returns a booking with its participants.
func (s *BookingService) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.GetByID: %w", err)
	}
	return b, nil
}

// sendConfirmation mails the traveler their booking summary, best-effort.
func (s *BookingService) sendConfirmation(ctx context.Context, trip domain.Trip, result AdmitResult) {
	if s.notifier == nil {
		return
	}

	err := s.notifier.Send(ctx, result.Booking.TravelerEmail,
		"Booking confirmed: "+trip.Itinerary.Title,
		"mail/booking-confirmation",
		map[string]any{
			"traveler":       result.Booking.TravelerName,
			"itinerary":      trip.Itinerary.Title,
			"participants":   result.Booking.PartySize(),
			"trip_cost":      result.Cost.TripCost,
			"insurance_cost": result.Cost.InsuranceCost,
			"total_cost":     result.Cost.TotalCost,
			"currency":       result.Cost.Currency,
			"homepage":       s.baseURL + "/home",
		})
	if err != nil {
		s.log.Warn("booking confirmation mail failed",
			"booking_id", result.Booking.ID, "error", err)
	}
}
