// Package search turns a stream of keystroke-driven search terms into a
// stream of hero lists.
//
// Terms are debounced, adjacent duplicates are dropped, and each surviving
// term starts a lookup that cancels whichever lookup came before it, so
// results are delivered in the order their terms were accepted and a
// superseded result is never delivered. Blank terms resolve to an empty
// list without a lookup.
package search

import (
	"context"
	"time"

	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/logging"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet interval a term must survive.
const DefaultDebounce = 300 * time.Millisecond

// LookupFunc resolves a non-blank term. It must honor ctx cancellation.
type LookupFunc func(ctx context.Context, term string) ([]domain.Hero, error)

type Pipeline struct {
	lookup   LookupFunc
	debounce time.Duration
	logger   *zap.Logger
}

type Option func(*Pipeline)

func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) {
		if d >= 0 {
			p.debounce = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.OrNop(logger)
	}
}

func New(lookup LookupFunc, opts ...Option) *Pipeline {
	p := &Pipeline{
		lookup:   lookup,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// lookupResult carries the generation of the term that produced it.
type lookupResult struct {
	gen    uint64
	heroes []domain.Hero
}

// Run subscribes to terms and returns the result stream. Every call is an
// independent subscription. The returned channel closes when ctx is done,
// or once terms is closed and the last accepted term has resolved.
func (p *Pipeline) Run(ctx context.Context, terms <-chan string) <-chan []domain.Hero {
	out := make(chan []domain.Hero)
	go p.loop(ctx, terms, out)
	return out
}

func (p *Pipeline) loop(ctx context.Context, terms <-chan string, out chan<- []domain.Hero) {
	defer close(out)

	// Lookups outlive neither the subscription nor their successor.
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	results := make(chan lookupResult)

	var (
		timer      *time.Timer
		timerC     <-chan time.Time
		pending    string
		hasPending bool

		last     string
		hasLast  bool
		gen      uint64
		inFlight bool
		cancel   context.CancelFunc = func() {}
	)
	defer func() { cancel() }()

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timerC = nil
	}
	defer stopTimer()

	// accept runs a term that survived debouncing.
	accept := func(term string) (deliver bool, heroes []domain.Hero) {
		if hasLast && term == last {
			return false, nil
		}
		last, hasLast = term, true

		cancel()
		gen++
		inFlight = false

		if domain.IsBlank(term) {
			return true, []domain.Hero{}
		}

		lookupCtx, lookupCancel := context.WithCancel(runCtx)
		cancel = lookupCancel
		inFlight = true
		go p.runLookup(lookupCtx, runCtx, gen, term, results)
		return false, nil
	}

	send := func(heroes []domain.Hero) bool {
		select {
		case out <- heroes:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		if terms == nil && !hasPending && !inFlight {
			return
		}

		select {
		case <-ctx.Done():
			return

		case term, ok := <-terms:
			if !ok {
				terms = nil
				if hasPending {
					stopTimer()
					hasPending = false
					if deliver, heroes := accept(pending); deliver && !send(heroes) {
						return
					}
				}
				continue
			}
			pending, hasPending = term, true
			if timer == nil {
				timer = time.NewTimer(p.debounce)
			} else {
				timer.Stop()
				timer.Reset(p.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			hasPending = false
			if deliver, heroes := accept(pending); deliver && !send(heroes) {
				return
			}

		case r := <-results:
			if r.gen != gen {
				p.logger.Debug("dropping superseded search result", zap.Uint64("generation", r.gen))
				continue
			}
			inFlight = false
			if !send(r.heroes) {
				return
			}
		}
	}
}

func (p *Pipeline) runLookup(ctx, runCtx context.Context, gen uint64, term string, results chan<- lookupResult) {
	heroes, err := p.lookup(ctx, term)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("hero search lookup failed", zap.String("term", term), zap.Error(err))
		}
		heroes = []domain.Hero{}
	}
	if heroes == nil {
		heroes = []domain.Hero{}
	}

	select {
	case results <- lookupResult{gen: gen, heroes: heroes}:
	case <-runCtx.Done():
	}
}
