package workshoporder

import (
	"time"

	"github.com/crumbline/bakeshop/core/order"
	"github.com/crumbline/bakeshop/core/workshop"
)

// WorkshopOrder books slots on a workshop. It shares the order lifecycle
// but may additionally end up cancelled at verification time when the
// workshop filled up while payment was in flight.
type WorkshopOrder struct {
	ID               string       `json:"id" db:"workshop_order_id"`
	WorkshopID       string       `json:"workshopId" db:"workshop_id"`
	UserID           string       `json:"userId" db:"user_id"`
	Slots            int          `json:"slots" db:"slots"`
	Reference        string       `json:"reference" db:"reference"`
	Total            string       `json:"total" db:"total"`
	Status           order.Status `json:"status" db:"status"`
	PaymentStatus    string       `json:"paymentStatus" db:"payment_status"`
	GatewayOrderID   string       `json:"gatewayOrderId" db:"gateway_order_id"`
	GatewayPaymentID string       `json:"gatewayPaymentId" db:"gateway_payment_id"`
	GatewaySignature string       `json:"-" db:"gateway_signature"`
	Deleted          bool         `json:"-" db:"deleted"`
	CreatedAt        time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time    `json:"updatedAt" db:"updated_at"`
}

type BookingNew struct {
	WorkshopID string `json:"workshopId" validate:"required,uuid4"`
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"required,max=20"`
	Slots      int    `json:"slots" validate:"required,gte=1,lte=10"`
}

type VerifyNew struct {
	GatewayOrderID   string `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	GatewaySignature string `json:"razorpay_signature" validate:"required"`
	OrderID          string `json:"orderId" validate:"required,uuid4"`
}

type Mailer interface {
	BookingConfirmation(to string, bo WorkshopOrder, ws workshop.Workshop) error
	BookingRefund(to string, bo WorkshopOrder, ws workshop.Workshop) error
	BookingStatus(to string, bo WorkshopOrder, ws workshop.Workshop) error
}
