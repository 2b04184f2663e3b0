// Package views holds the state behind each screen of the tour. A view
// talks to the hero API only through HeroData and reports only through the
// shared message log.
package views

import (
	"context"

	"github.com/dom/tour-of-heroes/internal/domain"
)

// HeroData is the data-access surface the views depend on. Implementations
// never return errors; failures resolve to empty lists or nil.
type HeroData interface {
	GetHeroes(ctx context.Context) []domain.Hero
	GetHero(ctx context.Context, id int) *domain.Hero
	AddHero(ctx context.Context, hero domain.Hero) *domain.Hero
	UpdateHero(ctx context.Context, hero domain.Hero) *domain.Hero
	DeleteHero(ctx context.Context, id int) *domain.Hero
}

func cloneHeroes(heroes []domain.Hero) []domain.Hero {
	return append([]domain.Hero{}, heroes...)
}
