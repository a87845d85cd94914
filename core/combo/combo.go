package combo

import "time"

// Combo is a postal brownie box: a fixed selection shipped rather than
// picked up, so it carries its own shipping price.
type Combo struct {
	ID            string    `json:"id" db:"combo_id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	Items         string    `json:"items" db:"items"`
	ImageURL      string    `json:"imageUrl" db:"image_url"`
	Price         string    `json:"price" db:"price"`
	ShippingPrice string    `json:"shippingPrice" db:"shipping_price"`
	Active        bool      `json:"active" db:"active"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

type ComboNew struct {
	Name          string `json:"name" validate:"required,max=200"`
	Description   string `json:"description" validate:"max=2000"`
	Items         string `json:"items" validate:"required,max=2000"`
	ImageURL      string `json:"imageUrl" validate:"omitempty,url"`
	Price         string `json:"price" validate:"required"`
	ShippingPrice string `json:"shippingPrice" validate:"required"`
}

type ComboUp struct {
	Name          *string `json:"name" validate:"omitempty,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	Items         *string `json:"items" validate:"omitempty,max=2000"`
	ImageURL      *string `json:"imageUrl" validate:"omitempty,url"`
	Price         *string `json:"price"`
	ShippingPrice *string `json:"shippingPrice"`
	Active        *bool   `json:"active"`
}
