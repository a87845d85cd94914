package order

import "time"

// Order is a pickup order for catalog items. Total and the per-item price
// snapshots are decimal strings persisted verbatim from the checkout
// payload; the server never re-prices against the catalog.
type Order struct {
	ID               string    `json:"id" db:"order_id"`
	UserID           string    `json:"userId" db:"user_id"`
	Reference        string    `json:"reference" db:"reference"`
	Total            string    `json:"total" db:"total"`
	Status           Status    `json:"status" db:"status"`
	PaymentStatus    string    `json:"paymentStatus" db:"payment_status"`
	GatewayOrderID   string    `json:"gatewayOrderId" db:"gateway_order_id"`
	GatewayPaymentID string    `json:"gatewayPaymentId" db:"gateway_payment_id"`
	GatewaySignature string    `json:"-" db:"gateway_signature"`
	PickupAt         time.Time `json:"pickupAt" db:"pickup_at"`
	Note             string    `json:"note" db:"note"`
	Deleted          bool      `json:"-" db:"deleted"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// Item is a line of an order with the catalog snapshot taken at checkout,
// so later catalog edits never alter historical orders.
type Item struct {
	OrderID   string    `json:"orderId" db:"order_id"`
	ItemID    string    `json:"itemId" db:"item_id"`
	ItemType  string    `json:"itemType" db:"item_type"`
	Name      string    `json:"name" db:"name"`
	Price     string    `json:"price" db:"price"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type OrderNew struct {
	Email    string    `json:"email" validate:"required,email"`
	Name     string    `json:"name" validate:"required,max=120"`
	Phone    string    `json:"phone" validate:"required,max=20"`
	PickupAt time.Time `json:"pickupAt" validate:"required"`
	Note     string    `json:"note" validate:"max=500"`
	Total    string    `json:"total" validate:"required"`
	Items    []ItemNew `json:"items" validate:"required,min=1,max=50,dive"`
}

type ItemNew struct {
	ItemID   string `json:"itemId" validate:"required,uuid4"`
	ItemType string `json:"itemType" validate:"required,oneof=dessert combo special"`
	Name     string `json:"name" validate:"required,max=200"`
	Price    string `json:"price" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gte=1,lte=50"`
}

// VerifyNew is the gateway callback payload. Field names are the
// gateway's own; orderId points back at the local order.
type VerifyNew struct {
	GatewayOrderID   string `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	GatewaySignature string `json:"razorpay_signature" validate:"required"`
	OrderID          string `json:"orderId" validate:"required,uuid4"`
}

type StatusUp struct {
	Status Status `json:"status" validate:"required,oneof=pending payment_pending paid confirmed ready completed cancelled refunded"`
}

// Mailer is what the handlers need from the email layer. Sends happen in
// the background and are best-effort.
type Mailer interface {
	OrderConfirmation(to string, ord Order, items []Item) error
	OrderStatus(to string, ord Order) error
}
