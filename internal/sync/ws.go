package sync

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cardhub/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler registers the connection on the hub and keeps it open until the
// client goes away. Claims set by auth middleware scope the events received.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		userID := ""
		if claims := auth.MustGetClaims(c); claims != nil {
			userID = claims.UserID
		}

		// Publish writes to registered connections, so the welcome goes out first.
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"welcome","transport":"websocket"}`)); err != nil {
			_ = ws.Close()
			return
		}
		hub.AddWS(ws, userID)
		hub.logger.Info("client connected", zap.String("user_id", userID))

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.RemoveWS(ws)
		hub.logger.Info("client disconnected", zap.String("user_id", userID))
	}
}

// Stream upgrades the request and writes every value received from open as
// a JSON message until the client disconnects or the stream ends. open is
// given a context cancelled when the client goes away.
func Stream[T any](c *gin.Context, logger *zap.Logger, open func(ctx context.Context) <-chan T) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for v := range open(ctx) {
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteJSON(v); err != nil {
			if logger != nil {
				logger.Debug("stream write failed", zap.Error(err))
			}
			return
		}
	}
}
