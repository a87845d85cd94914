package workshop

import "time"

type Status string

const (
	Active    Status = "active"
	Inactive  Status = "inactive"
	Completed Status = "completed"
)

type Workshop struct {
	ID          string    `json:"id" db:"workshop_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	Price       string    `json:"price" db:"price"`
	MaxBookings int       `json:"maxBookings" db:"max_bookings"`
	HeldAt      time.Time `json:"heldAt" db:"held_at"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Availability is computed on read, never stored: slots are whatever
// captured, non-deleted bookings have not consumed.
type Availability struct {
	Workshop
	CurrentBookings int `json:"currentBookings"`
	AvailableSlots  int `json:"availableSlots"`
}

type WorkshopNew struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	ImageURL    string    `json:"imageUrl" validate:"omitempty,url"`
	Price       string    `json:"price" validate:"required"`
	MaxBookings int       `json:"maxBookings" validate:"required,gte=1,lte=500"`
	HeldAt      time.Time `json:"heldAt" validate:"required"`
}

type WorkshopUp struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	ImageURL    *string    `json:"imageUrl" validate:"omitempty,url"`
	Price       *string    `json:"price"`
	MaxBookings *int       `json:"maxBookings" validate:"omitempty,gte=1,lte=500"`
	HeldAt      *time.Time `json:"heldAt"`
	Status      *Status    `json:"status" validate:"omitempty,oneof=active inactive completed"`
}
