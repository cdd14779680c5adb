// Package payment defines the outbound payment-provider contract the booking
// orchestrator depends on, plus the Razorpay-backed implementation.
package payment

import "context"

// Hold is a provider-side authorization for an amount. The ClientToken is
// handed to the booking client so it can complete confirmation out-of-band.
type Hold struct {
	ID          string
	ClientToken string
}

// StatusPaid is the provider-agnostic settled status. Implementations map
// their provider's vocabulary onto it; any other status means the hold has
// not been settled yet.
const StatusPaid = "paid"

// Confirmation is the provider's view of a hold after confirmation.
type Confirmation struct {
	Status    string
	MethodRef string
}

// Paid reports whether the hold has actually been settled. A non-error
// Confirm response can still describe an unpaid hold (for example an order
// the client never completed checkout for), so callers must check this
// before treating the payment as collected.
func (c Confirmation) Paid() bool { return c.Status == StatusPaid }

// Gateway is the opaque payment capability: create a hold for an amount,
// confirm it later. Providers are remote, slow, and fallible — callers must
// pass a bounded context and treat every error as an authorization failure.
type Gateway interface {
	// CreateHold authorizes amount in the given ISO currency, attaching
	// metadata for reconciliation. Amounts are major units; implementations
	// convert to the provider's minor units.
	CreateHold(ctx context.Context, amount float64, currency string, metadata map[string]string) (Hold, error)

	// Confirm finalizes a previously created hold.
	Confirm(ctx context.Context, holdID string) (Confirmation, error)
}
