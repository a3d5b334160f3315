package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-api/internal/catalog"
)

var (
	ErrNameRequired     = errors.New("product name is required")
	ErrInvalidPrice     = errors.New("price cannot be negative")
	ErrInvalidQuantity  = errors.New("total quantity cannot be negative")
	ErrCategoryNotFound = errors.New("category not found, please create the category first")
	ErrBrandNotFound    = errors.New("brand not found, please create the brand first")
)

// CatalogLookup resolves a category or brand by name.
type CatalogLookup interface {
	GetByName(ctx context.Context, name string) (*catalog.Item, error)
}

type Service interface {
	Create(ctx context.Context, input Input, userID uuid.UUID) (*Product, error)
	List(ctx context.Context, f Filter) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo       Repository
	categories CatalogLookup
	brands     CatalogLookup
}

func NewService(repo Repository, categories, brands CatalogLookup) Service {
	return &service{repo: repo, categories: categories, brands: brands}
}

// prepare validates input and resolves its category and brand to their
// stored names.
func (s *service) prepare(ctx context.Context, input Input) (*Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if input.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if input.TotalQty < 0 {
		return nil, ErrInvalidQuantity
	}

	category, err := s.categories.GetByName(ctx, input.Category)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			log.Warn().Str("category", input.Category).Msg("service: product references unknown category")
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("service: failed to look up category: %w", err)
	}

	brand, err := s.brands.GetByName(ctx, input.Brand)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			log.Warn().Str("brand", input.Brand).Msg("service: product references unknown brand")
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("service: failed to look up brand: %w", err)
	}

	return &Product{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Brand:       brand.Name,
		Category:    category.Name,
		Sizes:       cleanList(input.Sizes, false),
		Colors:      cleanList(input.Colors, true),
		Images:      cleanList(input.Images, false),
		Price:       input.Price.Round(2),
		TotalQty:    input.TotalQty,
	}, nil
}

func cleanList(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if lower {
			v = strings.ToLower(v)
		}
		out = append(out, v)
	}
	return out
}

func (s *service) Create(ctx context.Context, input Input, userID uuid.UUID) (*Product, error) {
	p, err := s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}
	p.UserID = userID

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrExists) {
			log.Warn().Str("name", p.Name).Msg("service: attempt to create duplicate product")
			return nil, ErrExists
		}
		log.Error().Err(err).Msg("service: failed to create product in repository")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Str("name", p.Name).Msg("service: product created")
	return p, nil
}

func (s *service) List(ctx context.Context, f Filter) (*Page, error) {
	f = f.Normalize()

	products, total, err := s.repo.List(ctx, f)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products in repository")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	return &Page{
		Products:   products,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		Pagination: paginate(f, total),
	}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch product")
		return nil, fmt.Errorf("service: failed to fetch product: %w", err)
	}
	return p, nil
}

func (s *service) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error) {
	products, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*Product, error) {
	p, err := s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}
	p.ID = id

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrExists) {
			return nil, err
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to update product in repository")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}

	// Reload so counters and review aggregates reflect the stored row.
	return s.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}
	return nil
}
