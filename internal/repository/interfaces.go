package repository

import (
	"context"

	"github.com/dom/tour-of-heroes/internal/domain"
)

// HeroRepository is the backing store for hero records. Implementations
// assign identifiers on Create and report misses as domain.ErrHeroNotFound.
type HeroRepository interface {
	GetAll(ctx context.Context) ([]*domain.Hero, error)
	GetByID(ctx context.Context, id int) (*domain.Hero, error)
	SearchByName(ctx context.Context, term string) ([]*domain.Hero, error)
	Create(ctx context.Context, hero *domain.Hero) error
	Update(ctx context.Context, hero *domain.Hero) error
	Delete(ctx context.Context, id int) (*domain.Hero, error)
	Count(ctx context.Context) (int64, error)
	// Seed inserts heroes with their given identifiers.
	Seed(ctx context.Context, heroes []domain.Hero) error
}

type Repositories struct {
	Hero HeroRepository
}
