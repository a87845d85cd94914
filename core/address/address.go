package address

import "time"

// Address is a delivery address for postal combo boxes, owned by one
// user.
type Address struct {
	ID        string    `json:"id" db:"address_id"`
	UserID    string    `json:"userId" db:"user_id"`
	Label     string    `json:"label" db:"label"`
	Line1     string    `json:"line1" db:"line1"`
	Line2     string    `json:"line2" db:"line2"`
	City      string    `json:"city" db:"city"`
	Postcode  string    `json:"postcode" db:"postcode"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type AddressNew struct {
	Label    string `json:"label" validate:"max=50"`
	Line1    string `json:"line1" validate:"required,max=200"`
	Line2    string `json:"line2" validate:"max=200"`
	City     string `json:"city" validate:"required,max=100"`
	Postcode string `json:"postcode" validate:"required,max=12"`
	Phone    string `json:"phone" validate:"max=20"`
}
