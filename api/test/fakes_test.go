package test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/crumbline/bakeshop/core/order"
	"github.com/crumbline/bakeshop/core/workshop"
	"github.com/crumbline/bakeshop/core/workshoporder"
	"github.com/crumbline/bakeshop/payment"
)

// fakeGateway is an in-memory payment.Gateway. Tests register payments
// against the gateway orders it hands out and control their status.
type fakeGateway struct {
	mu       sync.Mutex
	n        int
	orders   map[string]payment.GatewayOrder
	payments map[string]payment.Payment
	failing  bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		orders:   make(map[string]payment.GatewayOrder),
		payments: make(map[string]payment.Payment),
	}
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (payment.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failing {
		return payment.GatewayOrder{}, errors.New("gateway unavailable")
	}

	g.n++
	ord := payment.GatewayOrder{
		ID:       fmt.Sprintf("order_fake%03d", g.n),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}
	g.orders[ord.ID] = ord
	return ord, nil
}

func (g *fakeGateway) FetchPayment(ctx context.Context, paymentID string) (payment.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pay, ok := g.payments[paymentID]
	if !ok {
		return payment.Payment{}, errors.New("payment not found")
	}
	return pay, nil
}

// SetFailing makes CreateOrder error until cleared, simulating a gateway
// outage between the local commit and the gateway call.
func (g *fakeGateway) SetFailing(failing bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failing = failing
}

// AddPayment registers a captured (or otherwise) payment the handlers can
// fetch back during verification.
func (g *fakeGateway) AddPayment(pay payment.Payment) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payments[pay.ID] = pay
}

func (g *fakeGateway) LastOrder() payment.GatewayOrder {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.orders[fmt.Sprintf("order_fake%03d", g.n)]
}

// mailRecorder satisfies both mailer interfaces and just counts sends.
// The handlers mail in the background, so counts are read after
// background shutdown or with retries.
type mailRecorder struct {
	mu            sync.Mutex
	confirmations int
	statuses      int
	refunds       int
}

func (m *mailRecorder) OrderConfirmation(to string, ord order.Order, items []order.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations++
	return nil
}

func (m *mailRecorder) OrderStatus(to string, ord order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses++
	return nil
}

func (m *mailRecorder) BookingConfirmation(to string, bo workshoporder.WorkshopOrder, ws workshop.Workshop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations++
	return nil
}

func (m *mailRecorder) BookingRefund(to string, bo workshoporder.WorkshopOrder, ws workshop.Workshop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refunds++
	return nil
}

func (m *mailRecorder) BookingStatus(to string, bo workshoporder.WorkshopOrder, ws workshop.Workshop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses++
	return nil
}

func (m *mailRecorder) Confirmations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.confirmations
}

func (m *mailRecorder) Statuses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses
}

func (m *mailRecorder) Refunds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refunds
}

// Login authenticates the shared client; subsequent requests carry the
// session cookie until Logout.
func Login(env *TestEnv, email, password string) error {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}

	w, err := env.Client().Post(env.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("login as %s: status code %s", email, w.Status)
	}
	return nil
}

func Logout(env *TestEnv) error {
	w, err := env.Client().Post(env.URL+"/auth/logout", "application/json", nil)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		return fmt.Errorf("logout: status code %s", w.Status)
	}
	return nil
}
