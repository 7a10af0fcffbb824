package game

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	gateway  *Gateway
	upgrader websocket.Upgrader
}

// NewHandler builds the websocket entry point. An empty origin list allows
// every origin; possession of a room code is the only access control.
func NewHandler(gateway *Gateway, allowedOrigins []string) *Handler {
	return &Handler{
		gateway: gateway,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

func (h *Handler) ServeWS(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed",
			"ip", ctx.ClientIP(),
			"error", err,
		)
		return
	}

	socketConn := NewWebsocketConnection(conn)
	s := h.gateway.NewSession(&socketConn)
	go s.WritePump()
	s.ReadPump()
}
