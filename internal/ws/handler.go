package ws

import (
	"net/http"
	"strings"

	"taskboard/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleEvents upgrades an authenticated request to the task event feed.
// allowedOrigins is a comma-separated list; empty accepts any origin.
func HandleEvents(hub *Hub, allowedOrigins string) gin.HandlerFunc {
	allowed := make(map[string]bool)
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			return allowed[r.Header.Get("Origin")]
		},
	}

	return func(c *gin.Context) {
		id, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Warn("events upgrade failed", "user_id", id.UserID, "error", err)
			return
		}

		go NewClient(id.UserID, conn, hub).Run()
	}
}
