package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) requestConnection(c *fiber.Ctx) error {
	conn, err := s.connections.Request(c.Context(), currentUserID(c), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(conn)
}

func (s *Server) respondConnection(c *fiber.Ctx) error {
	var req struct {
		Action string `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	conn, err := s.connections.Respond(c.Context(), c.Params("connectionId"), currentUserID(c), req.Action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conn)
}

func (s *Server) cancelConnection(c *fiber.Ctx) error {
	if err := s.connections.Cancel(c.Context(), c.Params("connectionId"), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "cancelled"})
}

func (s *Server) removeConnection(c *fiber.Ctx) error {
	if err := s.connections.Remove(c.Context(), c.Params("connectionId"), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "removed"})
}

func (s *Server) connectionStatus(c *fiber.Ctx) error {
	status, connectionID, err := s.connections.Status(c.Context(), currentUserID(c), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	resp := fiber.Map{"status": status}
	if connectionID != "" {
		resp["connection_id"] = connectionID
	}
	return c.JSON(resp)
}

func (s *Server) listConnections(c *fiber.Ctx) error {
	conns, err := s.connections.ListConnections(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"connections": conns})
}

func (s *Server) listPendingRequests(c *fiber.Ctx) error {
	reqs, err := s.connections.ListPendingRequests(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"requests": reqs})
}
