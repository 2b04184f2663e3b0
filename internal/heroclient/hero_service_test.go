package heroclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/heroclient"
	"github.com/dom/tour-of-heroes/internal/message"
	"github.com/dom/tour-of-heroes/internal/search"
	"github.com/dom/tour-of-heroes/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*heroclient.HeroService, *message.Service, *testutil.TestServer) {
	t.Helper()
	ts := testutil.NewTestServer(t)
	messages := message.NewService()
	client := heroclient.NewHeroService(ts.BaseURL(), ts.Server.Client(), messages, nil)
	return client, messages, ts
}

// failingServer answers every request with 500 and counts them.
func failingServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestHeroService_GetHeroes(t *testing.T) {
	client, messages, _ := newClient(t)

	heroes := client.GetHeroes(context.Background())

	assert.Len(t, heroes, len(domain.SeedHeroes()))
	assert.Equal(t, []string{"HeroService: fetched heroes"}, messages.Messages())
}

func TestHeroService_GetHeroes_Failure(t *testing.T) {
	srv, hits := failingServer(t)
	messages := message.NewService()
	client := heroclient.NewHeroService(srv.URL, srv.Client(), messages, nil)

	heroes := client.GetHeroes(context.Background())

	require.NotNil(t, heroes)
	assert.Empty(t, heroes)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))

	msgs := messages.Messages()
	require.Len(t, msgs, 1)
	assert.True(t, strings.HasPrefix(msgs[0], "HeroService: getHeroes failed:"), msgs[0])
	assert.Contains(t, msgs[0], "status 500")
}

func TestHeroService_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	messages := message.NewService()
	client := heroclient.NewHeroService(baseURL, &http.Client{Timeout: time.Second}, messages, nil)

	assert.Empty(t, client.GetHeroes(context.Background()))
	assert.Nil(t, client.AddHero(context.Background(), domain.Hero{Name: "Nobody"}))

	msgs := messages.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, strings.HasPrefix(msgs[0], "HeroService: getHeroes failed:"))
	assert.True(t, strings.HasPrefix(msgs[1], "HeroService: addHero failed:"))
}

func TestHeroService_GetHero(t *testing.T) {
	client, messages, _ := newClient(t)
	ctx := context.Background()

	hero := client.GetHero(ctx, 13)
	require.NotNil(t, hero)
	assert.Equal(t, "Bombasto", hero.Name)

	missing := client.GetHero(ctx, 999)
	assert.Nil(t, missing)

	msgs := messages.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "HeroService: fetched hero id=13", msgs[0])
	assert.True(t, strings.HasPrefix(msgs[1], "HeroService: getHero id=999 failed:"), msgs[1])
	assert.Contains(t, msgs[1], "status 404")
}

func TestHeroService_GetHeroNo404(t *testing.T) {
	tests := []struct {
		name     string
		id       int
		wantName string
		wantMsg  string
	}{
		{
			name:     "found",
			id:       15,
			wantName: "Magneta",
			wantMsg:  "HeroService: fetched hero id=15",
		},
		{
			name:    "not found",
			id:      999,
			wantMsg: "HeroService: did not find hero id=999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, messages, _ := newClient(t)

			hero := client.GetHeroNo404(context.Background(), tt.id)

			if tt.wantName == "" {
				assert.Nil(t, hero)
			} else {
				require.NotNil(t, hero)
				assert.Equal(t, tt.wantName, hero.Name)
			}
			assert.Equal(t, []string{tt.wantMsg}, messages.Messages())
		})
	}
}

func TestHeroService_SearchHeroes(t *testing.T) {
	tests := []struct {
		name      string
		term      string
		wantNames []string
		wantMsgs  []string
	}{
		{
			name:      "case insensitive match",
			term:      "MA",
			wantNames: []string{"Magneta", "RubberMan", "Dynama", "Magma"},
			wantMsgs:  []string{`HeroService: found heroes matching "MA"`},
		},
		{
			name:      "no match",
			term:      "zzz",
			wantNames: []string{},
			wantMsgs:  []string{`HeroService: no heroes matching "zzz"`},
		},
		{
			name:      "blank term",
			term:      "   ",
			wantNames: []string{},
			wantMsgs:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, messages, _ := newClient(t)

			heroes := client.SearchHeroes(context.Background(), tt.term)

			require.NotNil(t, heroes)
			assert.Equal(t, tt.wantNames, names(heroes))
			assert.Equal(t, tt.wantMsgs, messages.Messages())
		})
	}
}

func TestHeroService_SearchHeroes_BlankMakesNoRequest(t *testing.T) {
	srv, hits := failingServer(t)
	messages := message.NewService()
	client := heroclient.NewHeroService(srv.URL, srv.Client(), messages, nil)

	heroes := client.SearchHeroes(context.Background(), "")

	assert.Empty(t, heroes)
	assert.Zero(t, atomic.LoadInt32(hits))
	assert.Zero(t, messages.Len())
}

func TestHeroService_AddUpdateDelete(t *testing.T) {
	client, messages, ts := newClient(t)
	ctx := context.Background()

	added := client.AddHero(ctx, domain.Hero{Name: "Ironclad"})
	require.NotNil(t, added)
	assert.Equal(t, 21, added.ID)
	assert.Equal(t, "Ironclad", added.Name)

	updated := client.UpdateHero(ctx, domain.Hero{ID: added.ID, Name: "Ironclad Prime"})
	require.NotNil(t, updated)
	assert.Equal(t, "Ironclad Prime", updated.Name)

	stored, err := ts.Repos.Hero.GetByID(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ironclad Prime", stored.Name)

	deleted := client.DeleteHero(ctx, added.ID)
	require.NotNil(t, deleted)
	assert.Equal(t, added.ID, deleted.ID)

	_, err = ts.Repos.Hero.GetByID(ctx, added.ID)
	assert.ErrorIs(t, err, domain.ErrHeroNotFound)

	assert.Equal(t, []string{
		"HeroService: added hero w/ id=21",
		"HeroService: updated hero id=21",
		"HeroService: deleted hero id=21",
	}, messages.Messages())
}

func TestHeroService_Failures(t *testing.T) {
	tests := []struct {
		name    string
		call    func(*heroclient.HeroService) bool
		wantMsg string
	}{
		{
			name: "add blank name",
			call: func(c *heroclient.HeroService) bool {
				return c.AddHero(context.Background(), domain.Hero{Name: " "}) == nil
			},
			wantMsg: "HeroService: addHero failed:",
		},
		{
			name: "update missing",
			call: func(c *heroclient.HeroService) bool {
				return c.UpdateHero(context.Background(), domain.Hero{ID: 999, Name: "Ghost"}) == nil
			},
			wantMsg: "HeroService: updateHero failed:",
		},
		{
			name: "delete missing",
			call: func(c *heroclient.HeroService) bool {
				return c.DeleteHero(context.Background(), 999) == nil
			},
			wantMsg: "HeroService: deleteHero failed:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, messages, _ := newClient(t)

			assert.True(t, tt.call(client), "expected nil fallback")

			msgs := messages.Messages()
			require.Len(t, msgs, 1)
			assert.True(t, strings.HasPrefix(msgs[0], tt.wantMsg), msgs[0])
		})
	}
}

func TestHeroService_ContentType(t *testing.T) {
	var (
		postType string
		getType  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			postType = r.Header.Get("Content-Type")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":11,"name":"Solo"}`))
		default:
			getType = r.Header.Get("Content-Type")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	client := heroclient.NewHeroService(srv.URL, srv.Client(), message.NewService(), nil)

	hero := client.AddHero(context.Background(), domain.Hero{Name: "Solo"})
	require.NotNil(t, hero)
	assert.Equal(t, 11, hero.ID)
	assert.Equal(t, "application/json", postType)

	client.GetHeroes(context.Background())
	assert.Empty(t, getType)
}

func TestHeroService_Lookup(t *testing.T) {
	client, _, _ := newClient(t)

	heroes, err := client.Lookup(context.Background(), "dr")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dr. Nice", "Dr. IQ"}, names(heroes))
}

func names(heroes []domain.Hero) []string {
	out := make([]string, 0, len(heroes))
	for _, h := range heroes {
		out = append(out, h.Name)
	}
	return out
}

// slowSearchServer holds ?name=slow until the client gives up on it and
// answers every other search with Dr. Nice.
func slowSearchServer(t *testing.T) (srv *httptest.Server, slowStarted <-chan struct{}) {
	t.Helper()
	started := make(chan struct{})
	var once sync.Once
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "slow" {
			once.Do(func() { close(started) })
			<-r.Context().Done()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":12,"name":"Dr. Nice"}]`))
	}))
	t.Cleanup(srv.Close)
	return srv, started
}

func TestHeroService_CancelledRequestIsNotAFailure(t *testing.T) {
	srv, started := slowSearchServer(t)
	messages := message.NewService()
	client := heroclient.NewHeroService(srv.URL, srv.Client(), messages, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan []domain.Hero)
	go func() { done <- client.SearchHeroes(ctx, "slow") }()

	<-started
	cancel()

	select {
	case heroes := <-done:
		assert.Empty(t, heroes)
	case <-time.After(5 * time.Second):
		t.Fatal("search did not return after cancel")
	}
	assert.Zero(t, messages.Len())
}

func TestHeroService_SupersededLookupLeavesNoFailure(t *testing.T) {
	srv, started := slowSearchServer(t)
	messages := message.NewService()
	client := heroclient.NewHeroService(srv.URL, srv.Client(), messages, nil)

	var lookups sync.WaitGroup
	lookup := func(ctx context.Context, term string) ([]domain.Hero, error) {
		lookups.Add(1)
		defer lookups.Done()
		return client.Lookup(ctx, term)
	}
	pipeline := search.New(lookup, search.WithDebounce(20*time.Millisecond))

	terms := make(chan string)
	out := pipeline.Run(context.Background(), terms)

	terms <- "slow"
	<-started
	terms <- "nice"
	close(terms)

	var delivered [][]domain.Hero
	for heroes := range out {
		delivered = append(delivered, heroes)
	}
	lookups.Wait()

	require.Len(t, delivered, 1)
	assert.Equal(t, []string{"Dr. Nice"}, names(delivered[0]))
	assert.Equal(t, []string{`HeroService: found heroes matching "nice"`}, messages.Messages())
}
