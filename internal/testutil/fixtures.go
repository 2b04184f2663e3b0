package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/repository"
)

// HeroBuilder creates test heroes with a builder pattern
type HeroBuilder struct {
	name string
}

// NewHeroBuilder creates a new HeroBuilder with default values
func NewHeroBuilder() *HeroBuilder {
	return &HeroBuilder{name: "Test Hero"}
}

// WithName sets the hero name
func (b *HeroBuilder) WithName(name string) *HeroBuilder {
	b.name = name
	return b
}

// Build stores the hero and returns it with its assigned id
func (b *HeroBuilder) Build(t *testing.T, repo repository.HeroRepository) *domain.Hero {
	t.Helper()

	hero := &domain.Hero{Name: b.name}
	if err := repo.Create(context.Background(), hero); err != nil {
		t.Fatalf("failed to create hero: %v", err)
	}
	return hero
}

// SeedHeroes creates N test heroes
func SeedHeroes(t *testing.T, repo repository.HeroRepository, count int) []*domain.Hero {
	t.Helper()

	heroes := make([]*domain.Hero, count)
	for i := 0; i < count; i++ {
		heroes[i] = NewHeroBuilder().
			WithName(fmt.Sprintf("Test Hero %d", i)).
			Build(t, repo)
	}
	return heroes
}

// SeedRoster loads the starting roster with its fixed ids
func SeedRoster(t *testing.T, repo repository.HeroRepository) []domain.Hero {
	t.Helper()

	heroes := domain.SeedHeroes()
	if err := repo.Seed(context.Background(), heroes); err != nil {
		t.Fatalf("failed to seed heroes: %v", err)
	}
	return heroes
}
