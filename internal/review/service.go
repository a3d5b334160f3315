package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-api/internal/product"
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrMessageRequired = errors.New("review message is required")
)

type ProductReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

type Service interface {
	Create(ctx context.Context, productID, userID uuid.UUID, input Input) (*Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error)
}

type service struct {
	repo     Repository
	products ProductReader
}

func NewService(repo Repository, products ProductReader) Service {
	return &service{repo: repo, products: products}
}

func (s *service) Create(ctx context.Context, productID, userID uuid.UUID, input Input) (*Review, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, ErrMessageRequired
	}
	if input.Rating < MinRating || input.Rating > MaxRating {
		return nil, ErrInvalidRating
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			log.Warn().Stringer("product_id", productID).Msg("service: review for unknown product")
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to load product for review: %w", err)
	}

	rev := &Review{
		ProductID: productID,
		UserID:    userID,
		Message:   message,
		Rating:    input.Rating,
	}
	if err := s.repo.Create(ctx, rev); err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			log.Warn().Stringer("product_id", productID).Stringer("user_id", userID).Msg("service: duplicate review")
			return nil, ErrAlreadyReviewed
		}
		if errors.Is(err, product.ErrNotFound) {
			log.Warn().Stringer("product_id", productID).Msg("service: product deleted before review was stored")
			return nil, product.ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to create review in repository")
		return nil, fmt.Errorf("service: failed to create review: %w", err)
	}

	log.Info().Stringer("review_id", rev.ID).Stringer("product_id", productID).Int("rating", rev.Rating).Msg("service: review created")
	return rev, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to list reviews")
		return nil, fmt.Errorf("service: failed to list reviews: %w", err)
	}
	return reviews, nil
}
