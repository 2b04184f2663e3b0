package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/logging"
	"github.com/dom/tour-of-heroes/internal/repository"
	"go.uber.org/zap"
)

type HeroService struct {
	heroRepo repository.HeroRepository
	logger   *zap.Logger
}

func NewHeroService(heroRepo repository.HeroRepository, logger *zap.Logger) *HeroService {
	return &HeroService{
		heroRepo: heroRepo,
		logger:   logging.OrNop(logger),
	}
}

func (s *HeroService) GetAllHeroes(ctx context.Context) ([]*domain.Hero, error) {
	return s.heroRepo.GetAll(ctx)
}

func (s *HeroService) GetHero(ctx context.Context, id int) (*domain.Hero, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidHeroID
	}
	return s.heroRepo.GetByID(ctx, id)
}

// FindHeroes backs the id lookup used by clients that must not see a 404:
// a miss is an empty list rather than an error.
func (s *HeroService) FindHeroes(ctx context.Context, id int) ([]*domain.Hero, error) {
	hero, err := s.GetHero(ctx, id)
	switch {
	case err == nil:
		return []*domain.Hero{hero}, nil
	case errors.Is(err, domain.ErrHeroNotFound), errors.Is(err, domain.ErrInvalidHeroID):
		return []*domain.Hero{}, nil
	default:
		return nil, err
	}
}

// SearchHeroes matches names case-insensitively. A blank term lists everyone.
func (s *HeroService) SearchHeroes(ctx context.Context, term string) ([]*domain.Hero, error) {
	if domain.IsBlank(term) {
		return s.heroRepo.GetAll(ctx)
	}
	return s.heroRepo.SearchByName(ctx, term)
}

type CreateHeroInput struct {
	Name string
}

func (s *HeroService) CreateHero(ctx context.Context, input CreateHeroInput) (*domain.Hero, error) {
	hero := &domain.Hero{Name: input.Name}
	if err := hero.Validate(); err != nil {
		return nil, err
	}

	if err := s.heroRepo.Create(ctx, hero); err != nil {
		return nil, fmt.Errorf("create hero: %w", err)
	}

	s.logger.Info("hero created", zap.Int("heroID", hero.ID), zap.String("name", hero.Name))
	return hero, nil
}

func (s *HeroService) UpdateHero(ctx context.Context, hero *domain.Hero) error {
	if hero.ID <= 0 {
		return domain.ErrInvalidHeroID
	}
	if err := hero.Validate(); err != nil {
		return err
	}
	return s.heroRepo.Update(ctx, hero)
}

func (s *HeroService) DeleteHero(ctx context.Context, id int) (*domain.Hero, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidHeroID
	}
	hero, err := s.heroRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("hero deleted", zap.Int("heroID", hero.ID))
	return hero, nil
}

// SeedIfEmpty loads the starting roster into an empty store.
func (s *HeroService) SeedIfEmpty(ctx context.Context) (int, error) {
	count, err := s.heroRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count heroes: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	heroes := domain.SeedHeroes()
	if err := s.heroRepo.Seed(ctx, heroes); err != nil {
		return 0, fmt.Errorf("seed heroes: %w", err)
	}
	return len(heroes), nil
}
