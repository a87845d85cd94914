package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayGateway implements Gateway on the Razorpay REST API. The SDK has
// no context support; ctx is accepted for interface symmetry only.
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpay(keyID, secret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, secret)}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (GatewayOrder, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		n := make(map[string]interface{}, len(notes))
		for k, v := range notes {
			n[k] = v
		}
		data["notes"] = n
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return GatewayOrder{}, fmt.Errorf("creating gateway order: %w", err)
	}

	ord := GatewayOrder{
		ID:       asString(body["id"]),
		Amount:   asInt64(body["amount"]),
		Currency: asString(body["currency"]),
		Receipt:  asString(body["receipt"]),
	}
	if ord.ID == "" {
		return GatewayOrder{}, fmt.Errorf("gateway order response missing id: %v", body)
	}
	return ord, nil
}

func (g *RazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (Payment, error) {
	body, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return Payment{}, fmt.Errorf("fetching payment[%s]: %w", paymentID, err)
	}

	p := Payment{
		ID:             asString(body["id"]),
		GatewayOrderID: asString(body["order_id"]),
		Status:         asString(body["status"]),
		Amount:         asInt64(body["amount"]),
		Method:         asString(body["method"]),
	}
	if p.ID == "" {
		return Payment{}, fmt.Errorf("payment response missing id: %v", body)
	}
	return p, nil
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asInt64 tolerates the SDK's json.Number-free decoding, where numbers
// arrive as float64.
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}
