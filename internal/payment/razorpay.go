package payment

import (
	"context"
	"fmt"
	"math"

	"github.com/razorpay/razorpay-go"
)

// sdkTimeoutSeconds caps each Razorpay HTTP call at the client level. The
// caller's ctx deadline is usually tighter; this is the floor for callers
// that pass an unbounded context.
const sdkTimeoutSeconds = 30

// RazorpayGateway implements Gateway using the Razorpay orders API.
// An order in "created" status acts as the hold; its id doubles as the
// client-confirmable token the checkout flow needs.
type RazorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpayGateway constructs a gateway from API credentials.
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	client.SetTimeout(sdkTimeoutSeconds)
	return &RazorpayGateway{client: client}
}

// CreateHold creates a Razorpay order for the amount. Razorpay amounts are
// integer minor units (cents / paise), so the major-unit amount is scaled
// and rounded here at the provider boundary.
func (g *RazorpayGateway) CreateHold(ctx context.Context, amount float64, currency string, metadata map[string]string) (Hold, error) {
	notes := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		notes[k] = v
	}

	data := map[string]interface{}{
		"amount":   int64(math.Round(amount * 100)),
		"currency": currency,
		"notes":    notes,
	}

	order, err := await(ctx, func() (map[string]interface{}, error) {
		return g.client.Order.Create(data, nil)
	})
	if err != nil {
		return Hold{}, fmt.Errorf("payment.RazorpayGateway.CreateHold: %w", err)
	}

	id, ok := order["id"].(string)
	if !ok || id == "" {
		return Hold{}, fmt.Errorf("payment.RazorpayGateway.CreateHold: order response missing id")
	}

	return Hold{ID: id, ClientToken: id}, nil
}

// Confirm fetches the order and reports its settlement status.
func (g *RazorpayGateway) Confirm(ctx context.Context, holdID string) (Confirmation, error) {
	order, err := await(ctx, func() (map[string]interface{}, error) {
		return g.client.Order.Fetch(holdID, nil, nil)
	})
	if err != nil {
		return Confirmation{}, fmt.Errorf("payment.RazorpayGateway.Confirm: %w", err)
	}

	status, _ := order["status"].(string)
	if status == "" {
		return Confirmation{}, fmt.Errorf("payment.RazorpayGateway.Confirm: order response missing status")
	}

	conf := Confirmation{Status: status}
	if method, ok := order["method"].(string); ok {
		conf.MethodRef = method
	}
	return conf, nil
}

// await races a blocking SDK call against ctx. The razorpay-go methods take
// no context, so this is what makes the caller's deadline binding: on ctx
// expiry the call's goroutine is abandoned (its HTTP request still ends via
// the client-level timeout) and its eventual result discarded.
func await(ctx context.Context, call func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	type outcome struct {
		order map[string]interface{}
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		order, err := call()
		done <- outcome{order: order, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		return out.order, out.err
	}
}
