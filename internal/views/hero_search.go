package views

import (
	"context"
	"sync"

	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/search"
)

// HeroSearchView feeds keystrokes into a search pipeline and keeps the
// latest list it delivers.
type HeroSearchView struct {
	terms     chan string
	done      chan struct{}
	onResults func([]domain.Hero)

	sendMu sync.Mutex
	closed bool

	mu      sync.Mutex
	results []domain.Hero
}

// NewHeroSearchView starts a subscription on pipeline that lives until
// Close or until ctx is done. onResults, if set, sees every delivered list.
func NewHeroSearchView(ctx context.Context, pipeline *search.Pipeline, onResults func([]domain.Hero)) *HeroSearchView {
	v := &HeroSearchView{
		terms:     make(chan string),
		done:      make(chan struct{}),
		onResults: onResults,
		results:   []domain.Hero{},
	}
	go v.consume(pipeline.Run(ctx, v.terms))
	return v
}

func (v *HeroSearchView) consume(results <-chan []domain.Hero) {
	defer close(v.done)
	for heroes := range results {
		v.mu.Lock()
		v.results = cloneHeroes(heroes)
		v.mu.Unlock()
		if v.onResults != nil {
			v.onResults(heroes)
		}
	}
}

// Search pushes one keystroke's worth of term. It returns false once the
// view is closed or its subscription has ended.
func (v *HeroSearchView) Search(term string) bool {
	v.sendMu.Lock()
	defer v.sendMu.Unlock()
	if v.closed {
		return false
	}
	select {
	case v.terms <- term:
		return true
	case <-v.done:
		return false
	}
}

// Results returns the most recently delivered list.
func (v *HeroSearchView) Results() []domain.Hero {
	v.mu.Lock()
	defer v.mu.Unlock()
	return cloneHeroes(v.results)
}

// Close ends the subscription and waits for the last pending term to
// resolve.
func (v *HeroSearchView) Close() {
	v.sendMu.Lock()
	if !v.closed {
		v.closed = true
		close(v.terms)
	}
	v.sendMu.Unlock()
	<-v.done
}
