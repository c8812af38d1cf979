package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Pranaykumar222/CampusConnect/internal/auth"
	"github.com/Pranaykumar222/CampusConnect/internal/service"
	"github.com/Pranaykumar222/CampusConnect/internal/ws"
)

type Server struct {
	messaging   *service.MessagingService
	connections *service.ConnectionService
	notifier    *service.Notifier
}

func NewServer(validator *auth.Validator, wsServer *ws.Server,
	messaging *service.MessagingService, connections *service.ConnectionService,
	notifier *service.Notifier) *fiber.App {

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	s := &Server{messaging: messaging, connections: connections, notifier: notifier}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(wsServer.HandleWS()))

	v1 := app.Group("/api/v1", JWTAuth(validator))

	chats := v1.Group("/chats")
	chats.Post("/", s.accessDirectChat)
	chats.Get("/", s.listChats)
	chats.Post("/group", s.createGroup)
	chats.Put("/group/:id/rename", s.renameGroup)
	chats.Put("/group/:id/add", s.addToGroup)
	chats.Put("/group/:id/remove", s.removeFromGroup)
	chats.Delete("/group/:id", s.deleteGroup)

	messages := v1.Group("/messages")
	messages.Get("/:chatId", s.listMessages)
	messages.Post("/", s.sendMessage)
	messages.Post("/:chatId/seen", s.markSeen)

	conns := v1.Group("/connections")
	conns.Get("/status/:userId", s.connectionStatus)
	conns.Post("/:userId", s.requestConnection)
	conns.Patch("/:connectionId/respond", s.respondConnection)
	conns.Get("/", s.listConnections)
	conns.Get("/requests", s.listPendingRequests)
	conns.Delete("/:connectionId/cancel", s.cancelConnection)
	conns.Delete("/:connectionId/remove", s.removeConnection)

	notifs := v1.Group("/notifications")
	notifs.Get("/", s.listNotifications)
	notifs.Patch("/read-all", s.markAllNotificationsRead)
	notifs.Patch("/:id/read", s.markNotificationRead)
	notifs.Delete("/:id", s.deleteNotification)

	return app
}
