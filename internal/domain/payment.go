package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus tracks the life of a payment hold. A hold is created pending
// and marked paid once the provider confirms it; the booking itself is only
// visible once the whole bundle committed, so a persisted pending payment
// always belongs to a real booking awaiting client-side confirmation.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Payment is the financial record frozen at admission time: the rounded
// amounts derived from the booking's CostModel and the provider's hold
// reference. One payment per booking, same lifecycle.
type Payment struct {
	ID              uuid.UUID
	BookingID       uuid.UUID
	AmountPaid      float64
	AmountInsurance float64
	Currency        string
	Status          PaymentStatus
	ProviderRef     string // payment-provider hold / order identifier
	ClientToken     string // client-confirmable handle returned by the provider
	MethodRef       string // provider payment-method reference, set on confirmation
	PaymentDate     time.Time
}
