// Package payment wraps the payment gateway behind a narrow interface so
// handlers and the reconciliation worker can be exercised without the
// network.
package payment

import "context"

// Gateway-side payment states. "captured" is the only state that lets an
// order become paid.
const (
	StatusCreated    = "created"
	StatusAuthorized = "authorized"
	StatusCaptured   = "captured"
	StatusFailed     = "failed"
	StatusRefunded   = "refunded"
)

// GatewayOrder is the provider-side record representing an intent to
// collect payment.
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
}

// Payment is the provider's view of a payment attempt against a gateway
// order.
type Payment struct {
	ID             string
	GatewayOrderID string
	Status         string
	Amount         int64
	Method         string
}

type Gateway interface {
	// CreateOrder opens a gateway order for amount in the currency's
	// minor unit (paise).
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (GatewayOrder, error)

	// FetchPayment returns the authoritative state of a payment.
	FetchPayment(ctx context.Context, paymentID string) (Payment, error)
}
