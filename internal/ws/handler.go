package ws

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Handler aceita conexões em /ws/cameras/:id e as inscreve nos eventos da
// câmera indicada na rota.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		cameraID := c.Params("id")
		if cameraID == "" {
			_ = c.Close()
			return
		}

		client := &Client{
			hub:      hub,
			conn:     c,
			cameraID: cameraID,
			send:     make(chan []byte, 256),
		}

		hub.register <- client

		go client.WritePump()
		client.ReadPump()
	})
}

func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
