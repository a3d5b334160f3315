package product

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var ErrInvalidPriceRange = errors.New("price must be in the form min-max")

// ParsePriceRange reads "min-max". Either side may be left empty ("-50", "10-").
func ParsePriceRange(raw string) (PriceRange, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PriceRange{}, nil
	}

	minRaw, maxRaw, ok := strings.Cut(raw, "-")
	if !ok {
		return PriceRange{}, ErrInvalidPriceRange
	}

	var pr PriceRange
	if s := strings.TrimSpace(minRaw); s != "" {
		v, err := decimal.NewFromString(s)
		if err != nil || v.IsNegative() {
			return PriceRange{}, ErrInvalidPriceRange
		}
		pr.Min = &v
	}
	if s := strings.TrimSpace(maxRaw); s != "" {
		v, err := decimal.NewFromString(s)
		if err != nil || v.IsNegative() {
			return PriceRange{}, ErrInvalidPriceRange
		}
		pr.Max = &v
	}
	if pr.Min != nil && pr.Max != nil && pr.Min.GreaterThan(*pr.Max) {
		return PriceRange{}, ErrInvalidPriceRange
	}

	return pr, nil
}

// Normalize fills in page defaults and clamps the limit.
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

func (f Filter) offset() int {
	return (f.Page - 1) * f.Limit
}

// whereClause accumulates AND-ed conditions with positional pgx arguments.
type whereClause struct {
	conds []string
	args  []any
}

// add appends cond after replacing every "?" with the next placeholder.
func (w *whereClause) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (w *whereClause) next() string {
	return fmt.Sprintf("$%d", len(w.args)+1)
}

func buildWhere(f Filter) *whereClause {
	w := &whereClause{}
	if f.Name != "" {
		w.add("p.name ILIKE ?", "%"+escapeLike(f.Name)+"%")
	}
	if f.Brand != "" {
		w.add("p.brand = lower(?)", strings.TrimSpace(f.Brand))
	}
	if f.Category != "" {
		w.add("p.category = lower(?)", strings.TrimSpace(f.Category))
	}
	if f.Color != "" {
		w.add("EXISTS (SELECT 1 FROM unnest(p.colors) c WHERE lower(c) = lower(?))", strings.TrimSpace(f.Color))
	}
	if f.Size != "" {
		w.add("EXISTS (SELECT 1 FROM unnest(p.sizes) s WHERE lower(s) = lower(?))", strings.TrimSpace(f.Size))
	}
	if f.Price.Min != nil {
		w.add("p.price >= ?", *f.Price.Min)
	}
	if f.Price.Max != nil {
		w.add("p.price <= ?", *f.Price.Max)
	}
	return w
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(strings.TrimSpace(s))
}

func paginate(f Filter, total int) Pagination {
	var p Pagination
	if f.offset()+f.Limit < total {
		p.Next = &PageRef{Page: f.Page + 1, Limit: f.Limit}
	}
	if f.offset() > 0 {
		p.Prev = &PageRef{Page: f.Page - 1, Limit: f.Limit}
	}
	return p
}
