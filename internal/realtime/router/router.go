package router

import (
	"context"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/app"
	"github.com/B25-sm/clicktosell-sub002/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 註冊 realtime 相關的路由
func RegisterRoutes(r *fiber.App, realtimeWebsocket *app.RealtimeWebsocketHandler) {
	r.Use(middlewares.JWTMiddleware())

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		realtimeWebsocket.HandleConnection(context.Background(), c)
	}))
}
