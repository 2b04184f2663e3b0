package handlers

import (
	"net/http"

	"github.com/dom/tour-of-heroes/internal/logging"
	"github.com/dom/tour-of-heroes/internal/websocket"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

type SearchSocketHandler struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

func NewSearchSocketHandler(hub *websocket.Hub, logger *zap.Logger) *SearchSocketHandler {
	return &SearchSocketHandler{
		hub:    hub,
		logger: logging.OrNop(logger),
	}
}

func (h *SearchSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
