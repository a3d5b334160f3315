package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var ErrNameRequired = errors.New("name is required")

type Service interface {
	Kind() Kind
	Create(ctx context.Context, input Input, userID uuid.UUID) (*Item, error)
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	GetByName(ctx context.Context, name string) (*Item, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	kind Kind
	repo Repository
}

func NewService(kind Kind, repo Repository) Service {
	return &service{kind: kind, repo: repo}
}

// NormalizeName is the canonical form names are stored and looked up in.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *service) Kind() Kind {
	return s.kind
}

func (s *service) Create(ctx context.Context, input Input, userID uuid.UUID) (*Item, error) {
	name := NormalizeName(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	item := &Item{
		Name:   name,
		Image:  strings.TrimSpace(input.Image),
		UserID: userID,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, ErrExists) {
			log.Warn().Stringer("kind", s.kind).Str("name", name).Msg("service: duplicate catalog name")
			return nil, ErrExists
		}
		log.Error().Err(err).Stringer("kind", s.kind).Msg("service: failed to create catalog item")
		return nil, fmt.Errorf("service: failed to create %s: %w", s.kind, err)
	}

	return item, nil
}

func (s *service) List(ctx context.Context) ([]Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Stringer("kind", s.kind).Msg("service: failed to list catalog items")
		return nil, fmt.Errorf("service: failed to list %s: %w", s.kind, err)
	}
	return items, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to get %s by id: %w", s.kind, err)
	}
	return item, nil
}

func (s *service) GetByName(ctx context.Context, name string) (*Item, error) {
	item, err := s.repo.GetByName(ctx, NormalizeName(name))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to get %s by name: %w", s.kind, err)
	}
	return item, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*Item, error) {
	name := NormalizeName(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	item := &Item{
		ID:    id,
		Name:  name,
		Image: strings.TrimSpace(input.Image),
	}

	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrExists) {
			return nil, err
		}
		log.Error().Err(err).Stringer("kind", s.kind).Stringer("id", id).Msg("service: failed to update catalog item")
		return nil, fmt.Errorf("service: failed to update %s: %w", s.kind, err)
	}

	return item, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("kind", s.kind).Stringer("id", id).Msg("service: failed to delete catalog item")
		return fmt.Errorf("service: failed to delete %s: %w", s.kind, err)
	}
	return nil
}
