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
	"github.com/crumbline/bakeshop/core/workshop"
	"github.com/crumbline/bakeshop/core/workshoporder"
	"github.com/crumbline/bakeshop/payment"
)

type workshopTest struct {
	*TestEnv
}

type bookingResponse struct {
	Booking        workshoporder.WorkshopOrder `json:"booking"`
	GatewayOrderID string                      `json:"gatewayOrderId"`
	Key            string                      `json:"key"`
}

func TestWorkshop(t *testing.T) {
	env, err := NewTestEnv(t, "workshop_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	wt := &workshopTest{env}

	ws := wt.createWorkshopOK(t, "500.00", 2)

	if err := Login(env, env.UserEmail, env.UserPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(env)

	// Both bookings fit the advisory check: nothing is captured yet.
	a := wt.bookOK(t, ws.ID, 2)
	b := wt.bookOK(t, ws.ID, 2)

	// The total is slots times the server-side price, never client input.
	if a.Booking.Total != "1000.00" {
		t.Fatalf("booking total = %q, want %q", a.Booking.Total, "1000.00")
	}

	// First verification wins the capacity.
	wt.verifyCaptured(t, a, true)

	// The workshop is now full; new bookings are rejected up front.
	wt.bookFull(t, ws.ID, 1)

	// The second verification finds the workshop full under the row lock:
	// the money was captured, so the booking is cancelled for refund.
	wt.verifyCaptured(t, b, false)

	bo, err := workshoporder.Fetch(context.Background(), wt.DB, b.Booking.ID)
	if err != nil {
		t.Fatal(err)
	}
	if bo.Status != order.Cancelled || bo.PaymentStatus != payment.StatusRefunded {
		t.Fatalf("overflow booking = %s/%s, want %s/%s", bo.Status, bo.PaymentStatus, order.Cancelled, payment.StatusRefunded)
	}

	// The refund email goes out in the background.
	deadline := time.Now().Add(5 * time.Second)
	for wt.Mails.Refunds() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no refund email was sent")
		}
		time.Sleep(20 * time.Millisecond)
	}

	wt.checkAvailability(t, ws.ID, 2, 0)
}

func (wt *workshopTest) createWorkshopOK(t *testing.T, price string, maxBookings int) workshop.Workshop {
	t.Helper()

	if err := Login(wt.TestEnv, wt.AdminEmail, wt.AdminPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(wt.TestEnv)

	nw := map[string]any{
		"title":       "Macaron Basics",
		"description": "Shells, fillings and how not to hollow them.",
		"price":       price,
		"maxBookings": maxBookings,
		"heldAt":      time.Now().Add(14 * 24 * time.Hour).UTC(),
	}
	body, err := json.Marshal(nw)
	if err != nil {
		t.Fatal(err)
	}

	w, err := wt.Client().Post(wt.URL+"/workshops", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(w.Body)
		t.Fatalf("can't create workshop: status code %s: %s", w.Status, b)
	}

	var ws workshop.Workshop
	if err := json.NewDecoder(w.Body).Decode(&ws); err != nil {
		t.Fatal(err)
	}
	return ws
}

func (wt *workshopTest) book(t *testing.T, workshopID string, slots int) *http.Response {
	t.Helper()

	nb := map[string]any{
		"workshopId": workshopID,
		"email":      wt.UserEmail,
		"name":       "Test Customer",
		"phone":      "9876543210",
		"slots":      slots,
	}
	body, err := json.Marshal(nb)
	if err != nil {
		t.Fatal(err)
	}

	w, err := wt.Client().Post(wt.URL+"/workshop-orders", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func (wt *workshopTest) bookOK(t *testing.T, workshopID string, slots int) bookingResponse {
	t.Helper()

	w := wt.book(t, workshopID, slots)
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(w.Body)
		t.Fatalf("can't book workshop: status code %s: %s", w.Status, b)
	}

	var out bookingResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func (wt *workshopTest) bookFull(t *testing.T, workshopID string, slots int) {
	t.Helper()

	w := wt.book(t, workshopID, slots)
	w.Body.Close()

	if w.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("booking a full workshop: status code %s, want 422", w.Status)
	}
}

// verifyCaptured registers a captured payment for the booking and runs the
// verification, expecting it to end paid (wantPaid) or cancelled.
func (wt *workshopTest) verifyCaptured(t *testing.T, out bookingResponse, wantPaid bool) {
	t.Helper()

	payID := "pay_" + out.Booking.Reference
	wt.Gateway.AddPayment(payment.Payment{
		ID:             payID,
		GatewayOrderID: out.GatewayOrderID,
		Status:         payment.StatusCaptured,
	})

	body, err := json.Marshal(map[string]string{
		"razorpay_order_id":   out.GatewayOrderID,
		"razorpay_payment_id": payID,
		"razorpay_signature":  payment.Sign(out.GatewayOrderID, payID, wt.Secret),
		"orderId":             out.Booking.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	w, err := wt.Client().Post(wt.URL+"/workshop-orders/verify", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(w.Body)
		t.Fatalf("verify booking: status code %s: %s", w.Status, b)
	}

	var resp struct {
		Success bool         `json:"success"`
		Status  order.Status `json:"status"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	if wantPaid {
		if !resp.Success || resp.Status != order.Paid {
			t.Fatalf("verify response = %+v, want success with status paid", resp)
		}
		return
	}
	if resp.Success || resp.Status != order.Cancelled {
		t.Fatalf("verify response = %+v, want failure with status cancelled", resp)
	}
}

func (wt *workshopTest) checkAvailability(t *testing.T, workshopID string, wantBooked, wantFree int) {
	t.Helper()

	w, err := wt.Client().Get(wt.URL + "/workshops/" + workshopID)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("show workshop: status code %s", w.Status)
	}

	var av workshop.Availability
	if err := json.NewDecoder(w.Body).Decode(&av); err != nil {
		t.Fatal(err)
	}
	if av.CurrentBookings != wantBooked || av.AvailableSlots != wantFree {
		t.Fatalf("availability = %d booked/%d free, want %d/%d", av.CurrentBookings, av.AvailableSlots, wantBooked, wantFree)
	}
}
