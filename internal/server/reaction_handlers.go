package server

import (
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SetReactionRequest is the request body for applying a reaction
type SetReactionRequest struct {
	Kind   models.ReactionKind `json:"kind"`
	Symbol string              `json:"symbol"`
}

func (s *Server) setReaction(c *fiber.Ctx, subjectType models.SubjectType) error {
	subjectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req SetReactionRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	result, err := s.reactionService.SetReaction(c.UserContext(), service.SetReactionInput{
		UserID:      currentUserID(c),
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Kind:        req.Kind,
		Symbol:      req.Symbol,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(result)
}

func (s *Server) clearReaction(c *fiber.Ctx, subjectType models.SubjectType) error {
	subjectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.reactionService.ClearReaction(c.UserContext(), currentUserID(c), subjectType, subjectID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(result)
}

func (s *Server) listReactions(c *fiber.Ctx, subjectType models.SubjectType) error {
	subjectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	buckets, err := s.reactionService.ListReactions(c.UserContext(), s.optionalUserID(c), subjectType, subjectID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"reactions": buckets})
}

// SetPostReaction handles PUT /api/posts/:id/reaction
func (s *Server) SetPostReaction(c *fiber.Ctx) error {
	return s.setReaction(c, models.SubjectPost)
}

// ClearPostReaction handles DELETE /api/posts/:id/reaction
func (s *Server) ClearPostReaction(c *fiber.Ctx) error {
	return s.clearReaction(c, models.SubjectPost)
}

// GetMyPostReaction handles GET /api/posts/:id/reaction
func (s *Server) GetMyPostReaction(c *fiber.Ctx) error {
	subjectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	reaction, err := s.reactionService.GetReactionForViewer(c.UserContext(), currentUserID(c), models.SubjectPost, subjectID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"reaction": reaction})
}

// ListPostReactions handles GET /api/posts/:id/reactions
func (s *Server) ListPostReactions(c *fiber.Ctx) error {
	return s.listReactions(c, models.SubjectPost)
}

// SetCommentReaction handles PUT /api/comments/:id/reaction
func (s *Server) SetCommentReaction(c *fiber.Ctx) error {
	return s.setReaction(c, models.SubjectComment)
}

// ClearCommentReaction handles DELETE /api/comments/:id/reaction
func (s *Server) ClearCommentReaction(c *fiber.Ctx) error {
	return s.clearReaction(c, models.SubjectComment)
}

// ListCommentReactions handles GET /api/comments/:id/reactions
func (s *Server) ListCommentReactions(c *fiber.Ctx) error {
	return s.listReactions(c, models.SubjectComment)
}
