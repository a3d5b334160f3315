// Package catalog stores the labeled lookup entities products refer to by
// name: categories, brands and colors.
package catalog

import (
	"time"

	"github.com/gofrs/uuid"
)

type Kind string

const (
	KindCategory Kind = "category"
	KindBrand    Kind = "brand"
	KindColor    Kind = "color"
)

func (k Kind) String() string {
	return string(k)
}

// Title is the capitalized singular used in client messages.
func (k Kind) Title() string {
	switch k {
	case KindCategory:
		return "Category"
	case KindBrand:
		return "Brand"
	case KindColor:
		return "Color"
	default:
		return string(k)
	}
}

func (k Kind) table() string {
	switch k {
	case KindCategory:
		return "categories"
	case KindBrand:
		return "brands"
	case KindColor:
		return "colors"
	default:
		panic("catalog: unknown kind " + string(k))
	}
}

type Item struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	UserID    uuid.UUID `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Input struct {
	Name  string
	Image string
}
