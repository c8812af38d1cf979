package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) accessDirectChat(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}
	chat, err := s.messaging.FindOrCreateDirectChat(c.Context(), currentUserID(c), req.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(chat)
}

func (s *Server) listChats(c *fiber.Ctx) error {
	chats, err := s.messaging.ListChats(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"chats": chats})
}

func (s *Server) listMessages(c *fiber.Ctx) error {
	msgs, err := s.messaging.ListMessages(c.Context(), c.Params("chatId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

func (s *Server) sendMessage(c *fiber.Ctx) error {
	var req struct {
		ChatID  string `json:"chat_id"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	msg, err := s.messaging.SendMessage(c.Context(), req.ChatID, currentUserID(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(msg)
}

func (s *Server) markSeen(c *fiber.Ctx) error {
	if err := s.messaging.MarkSeen(c.Context(), c.Params("chatId"), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) createGroup(c *fiber.Ctx) error {
	var req struct {
		Name         string   `json:"name"`
		Participants []string `json:"participants"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	chat, err := s.messaging.CreateGroup(c.Context(), req.Name, currentUserID(c), req.Participants)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(chat)
}

func (s *Server) renameGroup(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if err := s.messaging.RenameGroup(c.Context(), c.Params("id"), currentUserID(c), req.Name); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) addToGroup(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}
	if err := s.messaging.AddToGroup(c.Context(), c.Params("id"), currentUserID(c), req.UserID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) removeFromGroup(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}
	if err := s.messaging.RemoveFromGroup(c.Context(), c.Params("id"), currentUserID(c), req.UserID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) deleteGroup(c *fiber.Ctx) error {
	if err := s.messaging.DeleteGroup(c.Context(), c.Params("id"), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}
