// Package memory is an in-process hero store that stands in for a real
// backend during development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/repository"
)

// firstGeneratedID is handed out when the store is empty.
const firstGeneratedID = 11

type heroRepository struct {
	mu     sync.RWMutex
	heroes map[int]domain.Hero
}

func NewHeroRepository(seed ...domain.Hero) *heroRepository {
	r := &heroRepository{heroes: make(map[int]domain.Hero)}
	for _, h := range seed {
		r.heroes[h.ID] = h
	}
	return r
}

func NewRepositories(seed ...domain.Hero) *repository.Repositories {
	return &repository.Repositories{
		Hero: NewHeroRepository(seed...),
	}
}

func (r *heroRepository) GetAll(ctx context.Context) ([]*domain.Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(domain.Hero) bool { return true }), nil
}

func (r *heroRepository) GetByID(ctx context.Context, id int) (*domain.Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.heroes[id]
	if !ok {
		return nil, domain.ErrHeroNotFound
	}
	return &h, nil
}

// SearchByName matches case-insensitively anywhere in the name.
func (r *heroRepository) SearchByName(ctx context.Context, term string) ([]*domain.Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(h domain.Hero) bool {
		return strings.Contains(strings.ToLower(h.Name), needle)
	}), nil
}

func (r *heroRepository) Create(ctx context.Context, hero *domain.Hero) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	hero.ID = r.nextID()
	r.heroes[hero.ID] = *hero
	return nil
}

func (r *heroRepository) Update(ctx context.Context, hero *domain.Hero) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.heroes[hero.ID]; !ok {
		return domain.ErrHeroNotFound
	}
	r.heroes[hero.ID] = *hero
	return nil
}

func (r *heroRepository) Delete(ctx context.Context, id int) (*domain.Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.heroes[id]
	if !ok {
		return nil, domain.ErrHeroNotFound
	}
	delete(r.heroes, id)
	return &h, nil
}

func (r *heroRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.heroes)), nil
}

func (r *heroRepository) Seed(ctx context.Context, heroes []domain.Hero) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range heroes {
		r.heroes[h.ID] = h
	}
	return nil
}

// nextID returns one past the highest id, or firstGeneratedID when empty.
// Caller must hold the write lock.
func (r *heroRepository) nextID() int {
	if len(r.heroes) == 0 {
		return firstGeneratedID
	}
	max := 0
	for id := range r.heroes {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func (r *heroRepository) sorted(keep func(domain.Hero) bool) []*domain.Hero {
	heroes := make([]*domain.Hero, 0, len(r.heroes))
	for _, h := range r.heroes {
		if keep(h) {
			h := h
			heroes = append(heroes, &h)
		}
	}
	sort.Slice(heroes, func(i, j int) bool { return heroes[i].ID < heroes[j].ID })
	return heroes
}
