package product

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
	Images      []string        `json:"images"`
	Price       decimal.Decimal `json:"price"`
	TotalQty    int             `json:"totalQty"`
	TotalSold   int             `json:"totalSold"`
	UserID      uuid.UUID       `json:"user"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// Derived on read.
	QtyLeft       int     `json:"qtyLeft"`
	TotalReviews  int     `json:"totalReviews"`
	AverageRating float64 `json:"averageRating"`
}

type Input struct {
	Name        string
	Description string
	Brand       string
	Category    string
	Sizes       []string
	Colors      []string
	Images      []string
	Price       decimal.Decimal
	TotalQty    int
}

// PriceRange is an inclusive bound; a nil side is open.
type PriceRange struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

type Filter struct {
	Name     string
	Brand    string
	Category string
	Color    string
	Size     string
	Price    PriceRange
	Page     int
	Limit    int
}

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

type Page struct {
	Products   []Product  `json:"products"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Pagination Pagination `json:"pagination"`
}
