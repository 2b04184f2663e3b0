package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/tour-of-heroes/internal/domain"
)

type MessageType string

const (
	// Client to Server
	MessageTypeSearchTerm MessageType = "SEARCH_TERM"

	// Server to Client
	MessageTypeSearchResults MessageType = "SEARCH_RESULTS"
	MessageTypeError         MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type SearchTermPayload struct {
	Term string `json:"term"`
}

// Server to Client payloads

type SearchResultsPayload struct {
	Heroes []domain.Hero `json:"heroes"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
