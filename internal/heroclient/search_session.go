package heroclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/logging"
	"github.com/dom/tour-of-heroes/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const searchSocketPath = heroesPath + "/search/ws"

// SearchSession is a live search run by the server: terms go up the socket
// as they are typed and debounced results come back down.
type SearchSession struct {
	conn    *gorillaWS.Conn
	results chan []domain.Hero
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	logger  *zap.Logger
}

// DialSearch opens a live-search session against the API at baseURL.
func DialSearch(ctx context.Context, baseURL string, logger *zap.Logger) (*SearchSession, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + searchSocketPath)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	conn, _, err := gorillaWS.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial search socket: %w", err)
	}

	s := &SearchSession{
		conn:    conn,
		results: make(chan []domain.Hero, 16),
		done:    make(chan struct{}),
		logger:  logging.OrNop(logger),
	}
	go s.readPump()
	return s, nil
}

// Search sends one term. Call it on every keystroke.
func (s *SearchSession) Search(term string) error {
	msg, err := websocket.NewMessage(websocket.MessageTypeSearchTerm, websocket.SearchTermPayload{Term: term})
	if err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(gorillaWS.TextMessage, data)
}

// Results delivers one hero list per surviving term. It closes with the session.
func (s *SearchSession) Results() <-chan []domain.Hero {
	return s.results
}

func (s *SearchSession) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		s.mu.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *SearchSession) readPump() {
	defer close(s.results)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.logger.Warn("search session read failed", zap.Error(err))
			}
			return
		}

		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("malformed search frame", zap.Error(err))
			continue
		}

		switch msg.Type {
		case websocket.MessageTypeSearchResults:
			var payload websocket.SearchResultsPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				s.logger.Warn("malformed search results", zap.Error(err))
				continue
			}
			select {
			case s.results <- nonNil(payload.Heroes):
			case <-s.done:
				return
			}
		case websocket.MessageTypeError:
			var payload websocket.ErrorPayload
			json.Unmarshal(msg.Payload, &payload)
			s.logger.Warn("search session error", zap.String("code", payload.Code), zap.String("message", payload.Message))
		}
	}
}
