package views

import (
	"context"
	"sync"

	"github.com/dom/tour-of-heroes/internal/domain"
)

// HeroDetailView shows and edits a single hero.
type HeroDetailView struct {
	data   HeroData
	goBack func()

	mu   sync.Mutex
	hero *domain.Hero
}

// NewHeroDetailView builds the detail screen. goBack is called when the
// user leaves the screen; it may be nil.
func NewHeroDetailView(data HeroData, goBack func()) *HeroDetailView {
	if goBack == nil {
		goBack = func() {}
	}
	return &HeroDetailView{data: data, goBack: goBack}
}

func (v *HeroDetailView) Load(ctx context.Context, id int) {
	hero := v.data.GetHero(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.hero = hero
}

// Hero returns a copy of the hero being edited, or nil if none is loaded.
func (v *HeroDetailView) Hero() *domain.Hero {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hero == nil {
		return nil
	}
	hero := *v.hero
	return &hero
}

func (v *HeroDetailView) SetName(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hero != nil {
		v.hero.Name = name
	}
}

// Save writes the edited hero back and then leaves the screen, whether or
// not the update succeeded. Without a loaded hero it does nothing.
func (v *HeroDetailView) Save(ctx context.Context) {
	hero := v.Hero()
	if hero == nil {
		return
	}
	v.data.UpdateHero(ctx, *hero)
	v.goBack()
}

func (v *HeroDetailView) GoBack() {
	v.goBack()
}
