package views

import (
	"context"
	"sync"

	"github.com/dom/tour-of-heroes/internal/domain"
)

// Top heroes are the ones at positions 1..4 of the roster.
const (
	topHeroesStart = 1
	topHeroesEnd   = 5
)

type DashboardView struct {
	data HeroData

	mu     sync.Mutex
	heroes []domain.Hero
}

func NewDashboardView(data HeroData) *DashboardView {
	return &DashboardView{data: data}
}

func (v *DashboardView) Load(ctx context.Context) {
	all := v.data.GetHeroes(ctx)

	var top []domain.Hero
	if len(all) > topHeroesStart {
		top = all[topHeroesStart:min(len(all), topHeroesEnd)]
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.heroes = cloneHeroes(top)
}

func (v *DashboardView) Heroes() []domain.Hero {
	v.mu.Lock()
	defer v.mu.Unlock()
	return cloneHeroes(v.heroes)
}
