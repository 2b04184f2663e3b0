package views

import (
	"context"
	"strings"
	"sync"

	"github.com/dom/tour-of-heroes/internal/domain"
)

type HeroesState int

const (
	StateEmpty HeroesState = iota
	StateLoaded
	StateHeroSelected
)

func (s HeroesState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateHeroSelected:
		return "hero-selected"
	default:
		return "unknown"
	}
}

// HeroesView is the hero list screen.
type HeroesView struct {
	data HeroData

	mu       sync.Mutex
	loaded   bool
	heroes   []domain.Hero
	selected *domain.Hero
}

func NewHeroesView(data HeroData) *HeroesView {
	return &HeroesView{data: data}
}

// Load fetches the roster. A failed fetch still leaves the view loaded,
// with an empty list.
func (v *HeroesView) Load(ctx context.Context) {
	heroes := v.data.GetHeroes(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.heroes = cloneHeroes(heroes)
	v.loaded = true
	v.selected = nil
}

func (v *HeroesView) State() HeroesState {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case !v.loaded:
		return StateEmpty
	case v.selected != nil:
		return StateHeroSelected
	default:
		return StateLoaded
	}
}

func (v *HeroesView) Heroes() []domain.Hero {
	v.mu.Lock()
	defer v.mu.Unlock()
	return cloneHeroes(v.heroes)
}

func (v *HeroesView) Selected() *domain.Hero {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return nil
	}
	hero := *v.selected
	return &hero
}

// Select marks hero as selected. It is ignored before the first Load.
func (v *HeroesView) Select(hero domain.Hero) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.loaded {
		return
	}
	v.selected = &hero
}

func (v *HeroesView) Deselect() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = nil
}

// Add creates a hero named name (trimmed) and appends it to the list.
// A blank name does nothing.
func (v *HeroesView) Add(ctx context.Context, name string) *domain.Hero {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	created := v.data.AddHero(ctx, domain.Hero{Name: name})
	if created == nil {
		return nil
	}

	v.mu.Lock()
	v.heroes = append(v.heroes, *created)
	v.mu.Unlock()
	return created
}

// Delete drops hero from the list before asking the store to delete it.
// The local removal stands even if the store delete fails.
func (v *HeroesView) Delete(ctx context.Context, hero domain.Hero) {
	v.mu.Lock()
	kept := make([]domain.Hero, 0, len(v.heroes))
	for _, h := range v.heroes {
		if h.ID != hero.ID {
			kept = append(kept, h)
		}
	}
	v.heroes = kept
	if v.selected != nil && v.selected.ID == hero.ID {
		v.selected = nil
	}
	v.mu.Unlock()

	v.data.DeleteHero(ctx, hero.ID)
}
