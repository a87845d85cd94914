package dessert

import "time"

type Dessert struct {
	ID          string    `json:"id" db:"dessert_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	Price       string    `json:"price" db:"price"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type DessertNew struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
	Price       string `json:"price" validate:"required"`
}

type DessertUp struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
	Price       *string `json:"price"`
	Active      *bool   `json:"active"`
}
