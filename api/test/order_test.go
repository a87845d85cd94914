package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/crumbline/bakeshop/core/order"
	"github.com/crumbline/bakeshop/payment"
	"github.com/crumbline/bakeshop/validate"
	"github.com/crumbline/bakeshop/worker"
	"github.com/sirupsen/logrus"
)

type orderTest struct {
	*TestEnv
}

type checkoutResponse struct {
	Order          order.Order `json:"order"`
	GatewayOrderID string      `json:"gatewayOrderId"`
	Key            string      `json:"key"`
}

func TestOrder(t *testing.T) {
	env, err := NewTestEnv(t, "order_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ot := &orderTest{env}

	if err := Login(env, env.UserEmail, env.UserPass); err != nil {
		t.Fatal(err)
	}

	out := ot.checkoutOK(t, "1250.00")

	// The total is stored as submitted, not recomputed from the items.
	if out.Order.Total != "1250.00" {
		t.Fatalf("total = %q, want the submitted %q", out.Order.Total, "1250.00")
	}
	if out.Order.Status != order.PaymentPending {
		t.Fatalf("status = %s, want %s", out.Order.Status, order.PaymentPending)
	}
	if out.GatewayOrderID == "" {
		t.Fatal("no gateway order attached")
	}
	if got := env.Gateway.LastOrder().Amount; got != 125000 {
		t.Fatalf("gateway amount = %d paise, want 125000", got)
	}

	// One order row, and one item row per submitted line.
	ords, err := order.ListByUser(context.Background(), env.DB, out.Order.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ords) != 1 {
		t.Fatalf("orders after checkout = %d, want 1", len(ords))
	}
	items, err := order.FetchItems(context.Background(), env.DB, out.Order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("order items = %d, want 1", len(items))
	}
	if items[0].Name != "Biscoff Cheesecake" || items[0].Price != "999.99" {
		t.Fatalf("item snapshot = %s/%s, want the submitted name and price", items[0].Name, items[0].Price)
	}

	ot.testBadSignature(t, out)
	ot.testVerify(t, out)

	if err := Logout(env); err != nil {
		t.Fatal(err)
	}

	ot.testStatusTransitions(t, out.Order.ID)
	ot.testReconcile(t)
}

func (ot *orderTest) checkoutOK(t *testing.T, total string) checkoutResponse {
	t.Helper()

	no := map[string]any{
		"email":    ot.UserEmail,
		"name":     "Test Customer",
		"phone":    "9876543210",
		"pickupAt": time.Now().Add(48 * time.Hour).UTC(),
		"total":    total,
		"items": []map[string]any{
			{"itemId": validate.GenerateID(), "itemType": "dessert", "name": "Biscoff Cheesecake", "price": "999.99", "quantity": 1},
		},
	}

	body, err := json.Marshal(no)
	if err != nil {
		t.Fatal(err)
	}

	w, err := ot.Client().Post(ot.URL+"/orders", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(w.Body)
		t.Fatalf("can't create order: status code %s: %s", w.Status, b)
	}

	var out checkoutResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("cannot unmarshal checkout response: %v", err)
	}
	return out
}

func (ot *orderTest) verify(t *testing.T, orderID, gwOrderID, payID, sig string) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"razorpay_order_id":   gwOrderID,
		"razorpay_payment_id": payID,
		"razorpay_signature":  sig,
		"orderId":             orderID,
	})
	if err != nil {
		t.Fatal(err)
	}

	w, err := ot.Client().Post(ot.URL+"/orders/verify", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func (ot *orderTest) fetchStatus(t *testing.T, orderID string) order.Status {
	t.Helper()

	ord, err := order.Fetch(context.Background(), ot.DB, orderID)
	if err != nil {
		t.Fatalf("fetching order: %v", err)
	}
	return ord.Status
}

func (ot *orderTest) testBadSignature(t *testing.T, out checkoutResponse) {
	payID := "pay_bad"
	ot.Gateway.AddPayment(payment.Payment{
		ID:             payID,
		GatewayOrderID: out.GatewayOrderID,
		Status:         payment.StatusCaptured,
	})

	// Garbage signature.
	w := ot.verify(t, out.Order.ID, out.GatewayOrderID, payID, "deadbeef")
	w.Body.Close()
	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("garbage signature: status code %s, want 400", w.Status)
	}

	// Valid HMAC over the swapped id pair must also fail.
	swapped := payment.Sign(payID, out.GatewayOrderID, ot.Secret)
	w = ot.verify(t, out.Order.ID, out.GatewayOrderID, payID, swapped)
	w.Body.Close()
	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("swapped-id signature: status code %s, want 400", w.Status)
	}

	// Neither attempt may have touched the order.
	if got := ot.fetchStatus(t, out.Order.ID); got != order.PaymentPending {
		t.Fatalf("status after rejected verifications = %s, want %s", got, order.PaymentPending)
	}
}

func (ot *orderTest) testVerify(t *testing.T, out checkoutResponse) {
	payID := "pay_ok"
	ot.Gateway.AddPayment(payment.Payment{
		ID:             payID,
		GatewayOrderID: out.GatewayOrderID,
		Status:         payment.StatusCaptured,
		Amount:         125000,
	})

	sig := payment.Sign(out.GatewayOrderID, payID, ot.Secret)
	w := ot.verify(t, out.Order.ID, out.GatewayOrderID, payID, sig)
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("verify: status code %s, want 200", w.Status)
	}

	var resp struct {
		Success bool         `json:"success"`
		Status  order.Status `json:"status"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Status != order.Paid {
		t.Fatalf("verify response = %+v, want success with status paid", resp)
	}

	if got := ot.fetchStatus(t, out.Order.ID); got != order.Paid {
		t.Fatalf("status after verification = %s, want %s", got, order.Paid)
	}
	ot.waitMails(t, ot.Mails.Confirmations, 1, "confirmation email")

	// Replaying the same valid callback is a no-op: the order stays paid
	// and no second confirmation goes out.
	w = ot.verify(t, out.Order.ID, out.GatewayOrderID, payID, sig)
	defer w.Body.Close()
	if w.StatusCode != http.StatusOK {
		t.Fatalf("replayed verify: status code %s, want 200", w.Status)
	}
	var replay struct {
		AlreadySet bool `json:"alreadySet"`
	}
	if err := json.NewDecoder(w.Body).Decode(&replay); err != nil {
		t.Fatal(err)
	}
	if !replay.AlreadySet {
		t.Fatal("replayed verify was not reported as already set")
	}
	time.Sleep(100 * time.Millisecond)
	if got := ot.Mails.Confirmations(); got != 1 {
		t.Fatalf("confirmation emails after replay = %d, want 1", got)
	}
}

// waitMails polls a mail counter until it reaches want; sends happen on
// background goroutines.
func (ot *orderTest) waitMails(t *testing.T, get func() int, want int, what string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for get() != want {
		if time.Now().After(deadline) {
			t.Fatalf("%s count never reached %d (at %d)", what, want, get())
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func (ot *orderTest) patchStatus(t *testing.T, orderID string, status order.Status) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]string{"status": string(status)})
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPatch, ot.URL+"/orders/"+orderID+"/status", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Content-Type", "application/json")

	w, err := ot.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func (ot *orderTest) testStatusTransitions(t *testing.T, orderID string) {
	// Customers never reach the back office.
	if err := Login(ot.TestEnv, ot.UserEmail, ot.UserPass); err != nil {
		t.Fatal(err)
	}
	w := ot.patchStatus(t, orderID, order.Confirmed)
	w.Body.Close()
	if w.StatusCode != http.StatusForbidden {
		t.Fatalf("customer transition: status code %s, want 403", w.Status)
	}

	// Managers clear the coarse check but the write is admin-only.
	if err := Login(ot.TestEnv, ot.ManagerEmail, ot.ManagerPass); err != nil {
		t.Fatal(err)
	}
	w = ot.patchStatus(t, orderID, order.Confirmed)
	w.Body.Close()
	if w.StatusCode != http.StatusForbidden {
		t.Fatalf("manager transition: status code %s, want 403", w.Status)
	}
	if got := ot.fetchStatus(t, orderID); got != order.Paid {
		t.Fatalf("status after forbidden transitions = %s, want %s", got, order.Paid)
	}

	if err := Login(ot.TestEnv, ot.AdminEmail, ot.AdminPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(ot.TestEnv)

	w = ot.patchStatus(t, orderID, order.Confirmed)
	w.Body.Close()
	if w.StatusCode != http.StatusOK {
		t.Fatalf("admin transition: status code %s, want 200", w.Status)
	}
	ot.waitMails(t, ot.Mails.Statuses, 1, "status email")

	// Re-submitting the same status is a no-op, not an error, and sends
	// no duplicate notification.
	w = ot.patchStatus(t, orderID, order.Confirmed)
	defer w.Body.Close()
	if w.StatusCode != http.StatusOK {
		t.Fatalf("repeated transition: status code %s, want 200", w.Status)
	}
	var resp struct {
		AlreadySet bool `json:"alreadySet"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.AlreadySet {
		t.Fatal("repeated transition was not reported as already set")
	}
	time.Sleep(100 * time.Millisecond)
	if got := ot.Mails.Statuses(); got != 1 {
		t.Fatalf("status emails after repeated transition = %d, want 1", got)
	}

	// Backwards is off the lifecycle.
	w = ot.patchStatus(t, orderID, order.Paid)
	w.Body.Close()
	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("backwards transition: status code %s, want 400", w.Status)
	}
}

// testReconcile breaks the gateway during checkout, leaving a committed
// order without a gateway order, then lets the reconciler repair it.
func (ot *orderTest) testReconcile(t *testing.T) {
	if err := Login(ot.TestEnv, ot.UserEmail, ot.UserPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(ot.TestEnv)

	ot.Gateway.SetFailing(true)

	no := map[string]any{
		"email":    ot.UserEmail,
		"name":     "Test Customer",
		"phone":    "9876543210",
		"pickupAt": time.Now().Add(48 * time.Hour).UTC(),
		"total":    "850.00",
		"items": []map[string]any{
			{"itemId": validate.GenerateID(), "itemType": "combo", "name": "Brownie Box", "price": "850.00", "quantity": 1},
		},
	}
	body, err := json.Marshal(no)
	if err != nil {
		t.Fatal(err)
	}

	w, err := ot.Client().Post(ot.URL+"/orders", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	w.Body.Close()
	if w.StatusCode != http.StatusInternalServerError {
		t.Fatalf("checkout during outage: status code %s, want 500", w.Status)
	}

	stuck, err := order.FetchStuck(context.Background(), ot.DB, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(stuck) != 1 {
		t.Fatalf("stuck orders = %d, want 1", len(stuck))
	}

	ot.Gateway.SetFailing(false)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	rc := worker.NewReconciler(logger, ot.DB, ot.Gateway, 10*time.Millisecond, 0, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rc.Run(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for {
		ord, err := order.Fetch(context.Background(), ot.DB, stuck[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if ord.GatewayOrderID != "" {
			if ord.Status != order.PaymentPending {
				t.Fatalf("reconciled status = %s, want %s", ord.Status, order.PaymentPending)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("reconciler never attached a gateway order")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
