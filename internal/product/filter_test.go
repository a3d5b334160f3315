package product

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMin string
		wantMax string
		wantErr bool
	}{
		{name: "empty", raw: ""},
		{name: "both", raw: "10-50.5", wantMin: "10", wantMax: "50.5"},
		{name: "open_max", raw: "10-", wantMin: "10"},
		{name: "open_min", raw: "-50", wantMax: "50"},
		{name: "no_dash", raw: "100", wantErr: true},
		{name: "not_a_number", raw: "abc-10", wantErr: true},
		{name: "min_above_max", raw: "50-10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr, err := ParsePriceRange(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPriceRange)
				return
			}
			require.NoError(t, err)

			if tt.wantMin == "" {
				assert.Nil(t, pr.Min)
			} else {
				require.NotNil(t, pr.Min)
				assert.True(t, decimal.RequireFromString(tt.wantMin).Equal(*pr.Min))
			}
			if tt.wantMax == "" {
				assert.Nil(t, pr.Max)
			} else {
				require.NotNil(t, pr.Max)
				assert.True(t, decimal.RequireFromString(tt.wantMax).Equal(*pr.Max))
			}
		})
	}
}

func TestFilter_Normalize(t *testing.T) {
	assert.Equal(t, Filter{Page: 1, Limit: 10}, Filter{}.Normalize())
	assert.Equal(t, Filter{Page: 3, Limit: 100}, Filter{Page: 3, Limit: 500}.Normalize())
	assert.Equal(t, Filter{Page: 1, Limit: 5}, Filter{Page: -2, Limit: 5}.Normalize())
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		total  int
		want   Pagination
	}{
		{name: "single_page", filter: Filter{Page: 1, Limit: 10}, total: 4, want: Pagination{}},
		{name: "first_of_many", filter: Filter{Page: 1, Limit: 10}, total: 25, want: Pagination{Next: &PageRef{Page: 2, Limit: 10}}},
		{
			name:   "middle",
			filter: Filter{Page: 2, Limit: 10},
			total:  25,
			want:   Pagination{Next: &PageRef{Page: 3, Limit: 10}, Prev: &PageRef{Page: 1, Limit: 10}},
		},
		{name: "last_exact", filter: Filter{Page: 3, Limit: 10}, total: 30, want: Pagination{Prev: &PageRef{Page: 2, Limit: 10}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Empty(t, cmp.Diff(tt.want, paginate(tt.filter, tt.total)))
		})
	}
}

func TestBuildWhere(t *testing.T) {
	low := decimal.NewFromInt(10)
	w := buildWhere(Filter{
		Name:  "50%_off",
		Brand: "Nike",
		Size:  "M",
		Price: PriceRange{Min: &low},
	})

	assert.Equal(t,
		` WHERE p.name ILIKE $1 AND p.brand = lower($2) AND EXISTS (SELECT 1 FROM unnest(p.sizes) s WHERE lower(s) = lower($3)) AND p.price >= $4`,
		w.String())
	require.Len(t, w.args, 4)
	assert.Equal(t, `%50\%\_off%`, w.args[0])
	assert.Equal(t, "$5", w.next())

	assert.Equal(t, "", buildWhere(Filter{}).String())
}
