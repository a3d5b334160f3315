package coupon

import (
	"math"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Coupon struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
	Discount  decimal.Decimal `json:"discount"`
	UserID    uuid.UUID       `json:"user"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (c Coupon) IsExpired(now time.Time) bool {
	return now.After(c.EndDate)
}

// DaysLeft counts partial days as whole ones and is zero once expired.
func (c Coupon) DaysLeft(now time.Time) int {
	remaining := c.EndDate.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// Apply returns total reduced by the coupon's percentage, rounded to cents.
func (c Coupon) Apply(total decimal.Decimal) decimal.Decimal {
	off := total.Mul(c.Discount).Div(decimal.NewFromInt(100))
	return total.Sub(off).Round(2)
}

type Input struct {
	Code      string
	StartDate time.Time
	EndDate   time.Time
	Discount  decimal.Decimal
}
