package order

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{Paid, Confirmed},
		{Confirmed, Ready},
		{Ready, Completed},
		{Paid, Refunded},
		{Pending, Cancelled},
		{PaymentPending, Cancelled},
		{Cancelled, Refunded},
	}
	for _, c := range allowed {
		if !CanTransition(c.from, c.to) {
			t.Errorf("expected %s -> %s to be allowed", c.from, c.to)
		}
	}

	denied := []struct{ from, to Status }{
		{Pending, Paid},
		{Completed, Confirmed},
		{Refunded, Paid},
		{Paid, Completed},
		{Completed, Cancelled},
		{Confirmed, Confirmed},
	}
	for _, c := range denied {
		if CanTransition(c.from, c.to) {
			t.Errorf("expected %s -> %s to be denied", c.from, c.to)
		}
	}
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	all := []Status{Pending, PaymentPending, Paid, Confirmed, Ready, Completed, Cancelled, Refunded}
	for _, to := range all {
		if CanTransition(Completed, to) {
			t.Errorf("completed must be terminal, but allows -> %s", to)
		}
		if CanTransition(Refunded, to) {
			t.Errorf("refunded must be terminal, but allows -> %s", to)
		}
	}
}
