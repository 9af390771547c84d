package relay

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same-user local sessions; restrict if ever exposed
	},
}

// Handler upgrades a session's connection and relays every frame it sends
// to all other sessions. Frames are opaque here; only clients interpret
// them as medium changes.
func Handler(hub *Hub, logger *log.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		hub.Add(ws)
		logger.Info("relay session connected", "remote", ws.RemoteAddr())

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				break
			}
			hub.BroadcastExcept(ws, data)
		}

		hub.Remove(ws)
		logger.Info("relay session disconnected", "remote", ws.RemoteAddr())
	}
}
