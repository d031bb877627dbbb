package stream

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func RegisterRoutes(r gin.IRouter, hub *Hub) {
	r.GET("/ws/:channel", func(c *gin.Context) {
		channel := c.Param("channel")
		if !ValidChannel(channel) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown channel"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("stream: upgrade failed channel=%s: %v", channel, err)
			return
		}
		defer conn.Close()

		client := hub.Register(channel)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(client)
		<-done
	})
}
