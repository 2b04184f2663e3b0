package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dom/tour-of-heroes/internal/search"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client is one live-search session. Terms read from the socket feed a
// private search pipeline whose results are written back to the socket.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	terms  chan string
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New()
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		terms:  make(chan string, 16),
		id:     id,
		ctx:    ctx,
		cancel: cancel,
		logger: hub.logger.With(zap.String("session", id.String())),
	}
}

func (c *Client) ID() uuid.UUID {
	return c.id
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("failed to unmarshal message", zap.Error(err))
			c.sendError("INVALID_MESSAGE", "Message is not valid JSON")
			continue
		}

		if !c.handleMessage(&msg) {
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleMessage reports false once the session is over.
func (c *Client) handleMessage(msg *Message) bool {
	switch msg.Type {
	case MessageTypeSearchTerm:
		var payload SearchTermPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid search term payload")
			return true
		}
		select {
		case c.terms <- payload.Term:
			return true
		case <-c.ctx.Done():
			return false
		}

	default:
		c.sendError("UNKNOWN_MESSAGE", "Unsupported message type "+string(msg.Type))
		return true
	}
}

// runSearch pumps pipeline results to the socket until the session ends.
func (c *Client) runSearch(pipeline *search.Pipeline) {
	for heroes := range pipeline.Run(c.ctx, c.terms) {
		msg, err := NewMessage(MessageTypeSearchResults, SearchResultsPayload{Heroes: heroes})
		if err != nil {
			c.logger.Error("failed to build search results", zap.Error(err))
			continue
		}
		c.Send(msg)
	}
}

func (c *Client) sendError(code, message string) {
	msg, _ := NewMessage(MessageTypeError, ErrorPayload{
		Code:    code,
		Message: message,
	})
	c.Send(msg)
}

func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal message", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	case <-c.ctx.Done():
	}
}

// Close ends the session; pumps and the pipeline wind down on their own.
func (c *Client) Close() {
	c.cancel()
}
