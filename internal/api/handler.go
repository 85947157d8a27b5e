package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// getRoomChats serves GET /v1/chats/:roomId?page=&limit=.
// page and limit default to 1 and 10 and are floored to 1; a page past the
// end of history is an empty data array, not an error.
func (s *Server) getRoomChats(c *fiber.Ctx) error {
	roomID := c.Params("roomId")
	if roomID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "room id is required")
	}

	page := positiveQueryInt(c, "page", 1)
	limit := positiveQueryInt(c, "limit", 10)

	msgs, err := s.repo.Page(c.Context(), roomID, page, limit)
	if err != nil {
		s.log.Errorw("chat history query failed", "roomId", roomID, "err", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not load chat history")
	}
	return respond(c, fiber.StatusOK, "chats retrieved successfully", msgs)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func positiveQueryInt(c *fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
