package user

import (
	"time"

	"github.com/gofrs/uuid"
)

// ShippingAddress is stored as a jsonb document on the user row.
type ShippingAddress struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Province   string `json:"province"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type User struct {
	ID                 uuid.UUID        `json:"id"`
	FullName           string           `json:"fullName"`
	Email              string           `json:"email"`
	PasswordHash       string           `json:"-"`
	IsAdmin            bool             `json:"isAdmin"`
	HasShippingAddress bool             `json:"hasShippingAddress"`
	ShippingAddress    *ShippingAddress `json:"shippingAddress,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
}
