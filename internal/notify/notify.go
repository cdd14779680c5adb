// Package notify defines the outbound notification contract used by the
// trip lifecycle broadcast, plus the SMTP mail implementation.
package notify

import "context"

// Notifier delivers a templated message to an address. Send is fire-and-
// forget from the caller's perspective: delivery failures are returned so
// the caller can log them, but callers never let them fail the operation
// that triggered the notification.
type Notifier interface {
	Send(ctx context.Context, address, subject, template string, data map[string]any) error
}
