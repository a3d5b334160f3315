package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrCodeRequired    = errors.New("coupon code is required")
	ErrInvalidDiscount = errors.New("discount must be greater than 0 and at most 100")
	ErrStartDateInPast = errors.New("start date cannot be in the past")
	ErrEndBeforeStart  = errors.New("end date must be after start date")
)

var hundred = decimal.NewFromInt(100)

type Service interface {
	Create(ctx context.Context, input Input, userID uuid.UUID) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// NewServiceWithClock is NewService with a fixed time source.
func NewServiceWithClock(repo Repository, now func() time.Time) Service {
	return &service{repo: repo, now: now}
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func validate(input Input) error {
	if NormalizeCode(input.Code) == "" {
		return ErrCodeRequired
	}
	if !input.Discount.IsPositive() || input.Discount.GreaterThan(hundred) {
		return ErrInvalidDiscount
	}
	if !input.EndDate.After(input.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}

func (s *service) Create(ctx context.Context, input Input, userID uuid.UUID) (*Coupon, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	now := s.now()
	if input.StartDate.Before(startOfDay(now)) {
		return nil, ErrStartDateInPast
	}

	c := &Coupon{
		Code:      NormalizeCode(input.Code),
		StartDate: input.StartDate.UTC(),
		EndDate:   input.EndDate.UTC(),
		Discount:  input.Discount.Round(2),
		UserID:    userID,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, ErrCodeExists) {
			log.Warn().Str("code", c.Code).Msg("service: attempt to create duplicate coupon")
			return nil, ErrCodeExists
		}
		log.Error().Err(err).Msg("service: failed to create coupon in repository")
		return nil, fmt.Errorf("service: failed to create coupon: %w", err)
	}

	log.Info().Stringer("coupon_id", c.ID).Str("code", c.Code).Msg("service: coupon created")
	return c, nil
}

func (s *service) List(ctx context.Context) ([]Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list coupons")
		return nil, fmt.Errorf("service: failed to list coupons: %w", err)
	}
	return coupons, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch coupon: %w", err)
	}
	return c, nil
}

func (s *service) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	c, err := s.repo.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch coupon by code: %w", err)
	}
	return c, nil
}

// Update allows a start date in the past so running coupons can be edited.
func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*Coupon, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	c := &Coupon{
		ID:        id,
		Code:      NormalizeCode(input.Code),
		StartDate: input.StartDate.UTC(),
		EndDate:   input.EndDate.UTC(),
		Discount:  input.Discount.Round(2),
	}
	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCodeExists) {
			return nil, err
		}
		log.Error().Err(err).Stringer("coupon_id", id).Msg("service: failed to update coupon")
		return nil, fmt.Errorf("service: failed to update coupon: %w", err)
	}
	return c, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("coupon_id", id).Msg("service: failed to delete coupon")
		return fmt.Errorf("service: failed to delete coupon: %w", err)
	}
	return nil
}
