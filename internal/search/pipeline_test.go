package search_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testDebounce = 20 * time.Millisecond

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeLookup struct {
	mu     sync.Mutex
	calls  []string
	heroes []domain.Hero
	err    error
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{heroes: domain.SeedHeroes()}
}

func (f *fakeLookup) Lookup(ctx context.Context, term string) ([]domain.Hero, error) {
	f.mu.Lock()
	f.calls = append(f.calls, term)
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}

	matches := []domain.Hero{}
	for _, h := range f.heroes {
		if strings.Contains(strings.ToLower(h.Name), strings.ToLower(term)) {
			matches = append(matches, h)
		}
	}
	return matches, nil
}

func (f *fakeLookup) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func receive(t *testing.T, out <-chan []domain.Hero) []domain.Hero {
	t.Helper()
	select {
	case heroes, ok := <-out:
		require.True(t, ok, "result stream closed early")
		return heroes
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a result")
	}
	return nil
}

// drain collects everything left on out until it closes.
func drain(t *testing.T, out <-chan []domain.Hero) [][]domain.Hero {
	t.Helper()
	var rest [][]domain.Hero
	deadline := time.After(time.Second)
	for {
		select {
		case heroes, ok := <-out:
			if !ok {
				return rest
			}
			rest = append(rest, heroes)
		case <-deadline:
			t.Fatal("timed out waiting for the result stream to close")
			return rest
		}
	}
}

func names(heroes []domain.Hero) []string {
	out := make([]string, 0, len(heroes))
	for _, h := range heroes {
		out = append(out, h.Name)
	}
	return out
}

func TestPipeline_BurstYieldsLastTerm(t *testing.T) {
	lookup := newFakeLookup()
	p := search.New(lookup.Lookup, search.WithDebounce(testDebounce))

	terms := make(chan string)
	out := p.Run(context.Background(), terms)

	for _, term := range []string{"m", "ma", "mag", "magm"} {
		terms <- term
		time.Sleep(2 * time.Millisecond)
	}

	heroes := receive(t, out)
	assert.Equal(t, []string{"Magma"}, names(heroes))

	close(terms)
	assert.Empty(t, drain(t, out))
	assert.Equal(t, []string{"magm"}, lookup.Calls())
}

func TestPipeline_AdjacentDuplicatesLookUpOnce(t *testing.T) {
	lookup := newFakeLookup()
	p := search.New(lookup.Lookup, search.WithDebounce(testDebounce))

	terms := make(chan string)
	out := p.Run(context.Background(), terms)

	terms <- "ma"
	receive(t, out)

	// The burst settles back on "ma", which equals the previous surviving term.
	terms <- "mag"
	terms <- "ma"
	time.Sleep(5 * testDebounce)

	close(terms)
	assert.Empty(t, drain(t, out))
	assert.Equal(t, []string{"ma"}, lookup.Calls())
}

func TestPipeline_NonAdjacentRepeatLooksUpAgain(t *testing.T) {
	lookup := newFakeLookup()
	p := search.New(lookup.Lookup, search.WithDebounce(testDebounce))

	terms := make(chan string)
	out := p.Run(context.Background(), terms)

	for _, term := range []string{"ma", "dr", "ma"} {
		terms <- term
		receive(t, out)
	}

	close(terms)
	drain(t, out)
	assert.Equal(t, []string{"ma", "dr", "ma"}, lookup.Calls())
}

func TestPipeline_BlankTermShortCircuits(t *testing.T) {
	tests := []struct {
		name string
		term string
	}{
		{name: "empty", term: ""},
		{name: "spaces", term: "   "},
		{name: "tabs and newlines", term: "\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := newFakeLookup()
			p := search.New(lookup.Lookup, search.WithDebounce(testDebounce))

			terms := make(chan string)
			out := p.Run(context.Background(), terms)

			terms <- tt.term
			heroes := receive(t, out)
			assert.NotNil(t, heroes)
			assert.Empty(t, heroes)

			close(terms)
			drain(t, out)
			assert.Empty(t, lookup.Calls())
		})
	}
}

func TestPipeline_SupersededResultIsNeverDelivered(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	slowDone := make(chan struct{})
	var slowCanceled bool

	lookup := func(ctx context.Context, term string) ([]domain.Hero, error) {
		if term == "slow" {
			close(started)
			<-release
			slowCanceled = ctx.Err() != nil
			close(slowDone)
			// Answer anyway, as a transport that ignores cancellation would.
			return []domain.Hero{{ID: 1, Name: "Stale"}}, nil
		}
		return []domain.Hero{{ID: 2, Name: "Fresh"}}, nil
	}

	p := search.New(lookup, search.WithDebounce(testDebounce))
	terms := make(chan string)
	out := p.Run(context.Background(), terms)

	terms <- "slow"
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("slow lookup never started")
	}

	terms <- "fast"
	heroes := receive(t, out)
	assert.Equal(t, []string{"Fresh"}, names(heroes))

	close(release)
	close(terms)
	assert.Empty(t, drain(t, out))

	<-slowDone
	assert.True(t, slowCanceled, "superseded lookup context should be canceled")
}

func TestPipeline_BlankTermSupersedesPendingLookup(t *testing.T) {
	started := make(chan struct{})
	lookup := func(ctx context.Context, term string) ([]domain.Hero, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	p := search.New(lookup, search.WithDebounce(testDebounce))
	terms := make(chan string)
	out := p.Run(context.Background(), terms)

	terms <- "mag"
	<-started
	terms <- " "

	heroes := receive(t, out)
	assert.Empty(t, heroes)

	close(terms)
	assert.Empty(t, drain(t, out))
}

func TestPipeline_LookupFailureDeliversEmptyAndContinues(t *testing.T) {
	lookup := newFakeLookup()
	lookup.err = errors.New("connection refused")
	p := search.New(lookup.Lookup, search.WithDebounce(testDebounce))

	terms := make(chan string)
	out := p.Run(context.Background(), terms)

	terms <- "ma"
	heroes := receive(t, out)
	assert.Empty(t, heroes)

	lookup.mu.Lock()
	lookup.err = nil
	lookup.mu.Unlock()

	terms <- "dr"
	heroes = receive(t, out)
	assert.Equal(t, []string{"Dr. Nice", "Dr. IQ"}, names(heroes))

	close(terms)
	drain(t, out)
}

func TestPipeline_ResultsInAcceptanceOrder(t *testing.T) {
	lookup := newFakeLookup()
	p := search.New(lookup.Lookup, search.WithDebounce(testDebounce))

	terms := make(chan string)
	out := p.Run(context.Background(), terms)

	want := [][]string{
		{"Celeritas"},
		{"Tornado"},
		{"Bombasto"},
	}
	for i, term := range []string{"cel", "tor", "bom"} {
		terms <- term
		assert.Equal(t, want[i], names(receive(t, out)))
	}

	close(terms)
	drain(t, out)
}

func TestPipeline_ClosingInputFlushesPendingTerm(t *testing.T) {
	lookup := newFakeLookup()
	p := search.New(lookup.Lookup, search.WithDebounce(time.Hour))

	terms := make(chan string, 2)
	terms <- "mag"
	terms <- "magn"
	close(terms)

	results := drain(t, p.Run(context.Background(), terms))
	require.Len(t, results, 1)
	assert.Equal(t, []string{"Magneta"}, names(results[0]))
	assert.Equal(t, []string{"magn"}, lookup.Calls())
}

func TestPipeline_ContextCancelClosesOutput(t *testing.T) {
	lookup := func(ctx context.Context, term string) ([]domain.Hero, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	p := search.New(lookup, search.WithDebounce(testDebounce))
	ctx, cancel := context.WithCancel(context.Background())
	terms := make(chan string)
	out := p.Run(ctx, terms)

	terms <- "hang"
	time.Sleep(3 * testDebounce)
	cancel()

	assert.Empty(t, drain(t, out))
}

func TestPipeline_SubscriptionsAreIndependent(t *testing.T) {
	lookup := newFakeLookup()
	p := search.New(lookup.Lookup, search.WithDebounce(testDebounce))

	for i := 0; i < 2; i++ {
		terms := make(chan string)
		out := p.Run(context.Background(), terms)
		terms <- "ma"
		receive(t, out)
		close(terms)
		drain(t, out)
	}

	assert.Equal(t, []string{"ma", "ma"}, lookup.Calls())
}

func TestNew_DefaultDebounce(t *testing.T) {
	assert.Equal(t, 300*time.Millisecond, search.DefaultDebounce)
}
