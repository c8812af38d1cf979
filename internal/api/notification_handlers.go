package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) listNotifications(c *fiber.Ctx) error {
	notifs, err := s.notifier.List(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"notifications": notifs})
}

func (s *Server) markNotificationRead(c *fiber.Ctx) error {
	notif, err := s.notifier.MarkRead(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(notif)
}

func (s *Server) markAllNotificationsRead(c *fiber.Ctx) error {
	n, err := s.notifier.MarkAllRead(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("%d notifications marked as read", n)})
}

func (s *Server) deleteNotification(c *fiber.Ctx) error {
	if err := s.notifier.Delete(c.Context(), c.Params("id"), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}
