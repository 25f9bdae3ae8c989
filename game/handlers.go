package game

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Ohjackson/Aj-ruKaisen/shared/logger"
)

type Handler struct {
	room *Room
}

func NewHandler(room *Room) *Handler {
	return &Handler{room: room}
}

// WebsocketHandler upgrades the request and starts the connection pumps.
// Origin policy is enforced by the CORS middleware in front of it.
func (h *Handler) WebsocketHandler(ctx *gin.Context) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Warningf("websocket upgrade failed: %v (ip=%s)", err, ctx.ClientIP())
		return
	}

	c := newClient(NewWebsocketConnection(conn), h.room)
	go c.ReadPump()
	go c.WritePump()
}

// DebugStateHandler serves the redacted room snapshot. Secrets come out
// as presence and length only.
func (h *Handler) DebugStateHandler(ctx *gin.Context) {
	snapshot, err := h.room.DebugState(ctx.Request.Context())
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "room unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, snapshot)
}
