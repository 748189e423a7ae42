package server

import (
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the request body for creating a post
type CreatePostRequest struct {
	Content      string               `json:"content"`
	MediaRefs    []string             `json:"media_refs"`
	LinkPreviews []models.LinkPreview `json:"link_previews"`
	Visibility   models.Visibility    `json:"visibility"`
	ScopeID      *uint                `json:"scope_id"`
}

// UpdatePostRequest is the request body for editing a post. An empty
// visibility keeps the stored value.
type UpdatePostRequest struct {
	Content      string               `json:"content"`
	MediaRefs    []string             `json:"media_refs"`
	LinkPreviews []models.LinkPreview `json:"link_previews"`
	Visibility   models.Visibility    `json:"visibility"`
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID:     currentUserID(c),
		Content:      req.Content,
		MediaRefs:    req.MediaRefs,
		LinkPreviews: req.LinkPreviews,
		Visibility:   req.Visibility,
		ScopeID:      req.ScopeID,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), s.optionalUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		ActorID:      currentUserID(c),
		PostID:       postID,
		Content:      req.Content,
		MediaRefs:    req.MediaRefs,
		LinkPreviews: req.LinkPreviews,
		Visibility:   req.Visibility,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PinPost handles POST /api/posts/:id/pin
func (s *Server) PinPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.PinPost(c.UserContext(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"pinned": true})
}

// UnpinPost handles DELETE /api/posts/:id/pin
func (s *Server) UnpinPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.UnpinPost(c.UserContext(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"pinned": false})
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	page, err := s.feedService.GetUserPosts(c.UserContext(), s.optionalUserID(c), authorID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(page)
}
