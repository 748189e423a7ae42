package server

import (
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed. An optional scope_id query switches from the
// global feed to one scope's wall, where pinned posts sort first.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	var scopeID *uint
	if raw := c.QueryInt("scope_id", 0); raw != 0 {
		if raw < 0 {
			return models.RespondWithError(c, models.NewValidationError("Invalid scope_id"))
		}
		id := uint(raw)
		scopeID = &id
	}

	page, err := s.feedService.GetFeed(c.UserContext(), service.FeedInput{
		ViewerID: s.optionalUserID(c),
		ScopeID:  scopeID,
		Limit:    p.Limit,
		Offset:   p.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(page)
}
