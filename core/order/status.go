package order

// Status is the order's lifecycle state. It must stay consistent with the
// gateway-side payment status: paid is only ever written together with a
// captured payment.
type Status string

const (
	Pending        Status = "pending"
	PaymentPending Status = "payment_pending"
	Paid           Status = "paid"
	Confirmed      Status = "confirmed"
	Ready          Status = "ready"
	Completed      Status = "completed"
	Cancelled      Status = "cancelled"
	Refunded       Status = "refunded"
)

// validNext is the transition table for admin status changes. Payment
// verification writes paid directly and does not consult this table.
var validNext = map[Status]map[Status]bool{
	Pending:        {Cancelled: true},
	PaymentPending: {Cancelled: true},
	Paid:           {Confirmed: true, Cancelled: true, Refunded: true},
	Confirmed:      {Ready: true, Cancelled: true, Refunded: true},
	Ready:          {Completed: true, Cancelled: true},
	Completed:      {},
	Cancelled:      {Refunded: true},
	Refunded:       {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
