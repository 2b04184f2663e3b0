// Package heroclient is the data-access service the views use to reach the
// hero API.
//
// Every operation follows the same policy: on success the result is
// returned and a status line is appended to the shared message log; on
// failure the error goes to the diagnostic logger, a failure line goes to
// the message log, and the operation returns its fallback (an empty list or
// nil). Callers never see an error.
package heroclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/logging"
	"github.com/dom/tour-of-heroes/internal/message"
	"go.uber.org/zap"
)

const heroesPath = "/api/v1/heroes"

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

type HeroService struct {
	heroesURL  string
	httpClient *http.Client
	messages   *message.Service
	logger     *zap.Logger
}

func NewHeroService(baseURL string, httpClient *http.Client, messages *message.Service, logger *zap.Logger) *HeroService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HeroService{
		heroesURL:  strings.TrimRight(baseURL, "/") + heroesPath,
		httpClient: httpClient,
		messages:   messages,
		logger:     logging.OrNop(logger),
	}
}

// GetHeroes fetches the full roster.
func (s *HeroService) GetHeroes(ctx context.Context) []domain.Hero {
	var heroes []domain.Hero
	if err := s.do(ctx, http.MethodGet, s.heroesURL, nil, &heroes); err != nil {
		return handleError(ctx, s, "getHeroes", err, []domain.Hero{})
	}
	s.log("fetched heroes")
	return nonNil(heroes)
}

// GetHero fetches one hero; a missing hero is a failure.
func (s *HeroService) GetHero(ctx context.Context, id int) *domain.Hero {
	var hero domain.Hero
	if err := s.do(ctx, http.MethodGet, s.heroURL(id), nil, &hero); err != nil {
		return handleError[*domain.Hero](ctx, s, fmt.Sprintf("getHero id=%d", id), err, nil)
	}
	s.log(fmt.Sprintf("fetched hero id=%d", id))
	return &hero
}

// GetHeroNo404 looks a hero up through the list endpoint, so a missing hero
// is reported as "not found" rather than as a failure.
func (s *HeroService) GetHeroNo404(ctx context.Context, id int) *domain.Hero {
	var heroes []domain.Hero
	u := s.heroesURL + "?" + url.Values{"id": {strconv.Itoa(id)}}.Encode()
	if err := s.do(ctx, http.MethodGet, u, nil, &heroes); err != nil {
		return handleError[*domain.Hero](ctx, s, fmt.Sprintf("getHero id=%d", id), err, nil)
	}
	if len(heroes) == 0 {
		s.log(fmt.Sprintf("did not find hero id=%d", id))
		return nil
	}
	s.log(fmt.Sprintf("fetched hero id=%d", id))
	return &heroes[0]
}

// SearchHeroes returns heroes whose name contains term. A blank term
// resolves to an empty list without a request.
func (s *HeroService) SearchHeroes(ctx context.Context, term string) []domain.Hero {
	if domain.IsBlank(term) {
		return []domain.Hero{}
	}

	var heroes []domain.Hero
	u := s.heroesURL + "?" + url.Values{"name": {term}}.Encode()
	if err := s.do(ctx, http.MethodGet, u, nil, &heroes); err != nil {
		return handleError(ctx, s, "searchHeroes", err, []domain.Hero{})
	}

	if len(heroes) > 0 {
		s.log(fmt.Sprintf("found heroes matching %q", term))
	} else {
		s.log(fmt.Sprintf("no heroes matching %q", term))
	}
	return nonNil(heroes)
}

// AddHero creates a hero; the returned hero carries the assigned id.
func (s *HeroService) AddHero(ctx context.Context, hero domain.Hero) *domain.Hero {
	body := struct {
		Name string `json:"name"`
	}{Name: hero.Name}

	var created domain.Hero
	if err := s.do(ctx, http.MethodPost, s.heroesURL, body, &created); err != nil {
		return handleError[*domain.Hero](ctx, s, "addHero", err, nil)
	}
	s.log(fmt.Sprintf("added hero w/ id=%d", created.ID))
	return &created
}

// UpdateHero replaces a hero and echoes it back on success.
func (s *HeroService) UpdateHero(ctx context.Context, hero domain.Hero) *domain.Hero {
	if err := s.do(ctx, http.MethodPut, s.heroesURL, hero, nil); err != nil {
		return handleError[*domain.Hero](ctx, s, "updateHero", err, nil)
	}
	s.log(fmt.Sprintf("updated hero id=%d", hero.ID))
	return &hero
}

// DeleteHero removes a hero and returns the deleted record.
func (s *HeroService) DeleteHero(ctx context.Context, id int) *domain.Hero {
	var deleted domain.Hero
	if err := s.do(ctx, http.MethodDelete, s.heroURL(id), nil, &deleted); err != nil {
		return handleError[*domain.Hero](ctx, s, "deleteHero", err, nil)
	}
	s.log(fmt.Sprintf("deleted hero id=%d", id))
	return &deleted
}

// Lookup adapts SearchHeroes to the search pipeline. It never fails.
func (s *HeroService) Lookup(ctx context.Context, term string) ([]domain.Hero, error) {
	return s.SearchHeroes(ctx, term), nil
}

// handleError records err and substitutes fallback. Only the operation
// name and the fallback differ between call sites. A request abandoned by
// its caller is not a failure and leaves no trace on the message log.
func handleError[T any](ctx context.Context, s *HeroService, operation string, err error, fallback T) T {
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		s.logger.Debug("hero request abandoned", zap.String("operation", operation))
		return fallback
	}
	s.logger.Error("hero request failed", zap.String("operation", operation), zap.Error(err))
	s.log(fmt.Sprintf("%s failed: %v", operation, err))
	return fallback
}

func (s *HeroService) log(msg string) {
	s.messages.Add("HeroService: " + msg)
}

func (s *HeroService) heroURL(id int) string {
	return s.heroesURL + "/" + strconv.Itoa(id)
}

func (s *HeroService) do(ctx context.Context, method, target string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func nonNil(heroes []domain.Hero) []domain.Hero {
	if heroes == nil {
		return []domain.Hero{}
	}
	return heroes
}
