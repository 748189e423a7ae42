package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pulse/internal/config"
	"pulse/internal/database"
	"pulse/internal/models"
	"pulse/internal/notifications"
	"pulse/internal/repository"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openResolver allows every view and moderation check. Individual tests swap
// in their own predicate.
type openResolver struct {
	canView     func(viewerID, authorID uint, scopeID *uint, visibility models.Visibility) (bool, error)
	canModerate func(userID, scopeID uint) (bool, error)
}

func (r *openResolver) CanView(_ context.Context, viewerID, authorID uint, scopeID *uint, visibility models.Visibility) (bool, error) {
	if r.canView != nil {
		return r.canView(viewerID, authorID, scopeID, visibility)
	}
	return true, nil
}

func (r *openResolver) CanModerate(_ context.Context, userID, scopeID uint) (bool, error) {
	if r.canModerate != nil {
		return r.canModerate(userID, scopeID)
	}
	return true, nil
}

type staticDirectory struct{}

func (staticDirectory) Lookup(_ context.Context, userID uint) (*models.AuthorSnapshot, error) {
	return &models.AuthorSnapshot{UserID: userID, DisplayName: fmt.Sprintf("user-%d", userID)}, nil
}

// newTestServer wires a Server over a fresh in-memory database with a
// permissive resolver. No Redis; events go to the NopSink.
func newTestServer(t *testing.T) (*Server, *gorm.DB, *openResolver) {
	t.Helper()
	db, err := database.OpenEphemeral()
	require.NoError(t, err)

	resolver := &openResolver{}
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reactionRepo := repository.NewReactionRepository(db)

	s := &Server{
		config:       &config.Config{JWTSecret: "test-secret"},
		db:           db,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		reactionRepo: reactionRepo,
	}
	sink := notifications.NopSink{}
	s.postService = service.NewPostService(postRepo, reactionRepo, resolver, staticDirectory{}, sink)
	s.commentService = service.NewCommentService(commentRepo, postRepo, reactionRepo, resolver, staticDirectory{}, sink)
	s.reactionService = service.NewReactionService(reactionRepo, postRepo, commentRepo, resolver, sink)
	s.feedService = service.NewFeedService(postRepo, reactionRepo, resolver, staticDirectory{})
	return s, db, resolver
}

// newTestApp registers the API routes behind a fake auth middleware that pins
// the requesting user (0 means anonymous). AuthRequired itself is covered by
// its own tests.
func newTestApp(s *Server, userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("userID", userID)
		}
		return c.Next()
	})

	api := app.Group("/api")
	api.Get("/feed", s.GetFeed)
	api.Get("/users/:id/posts", s.GetUserPosts)

	posts := api.Group("/posts")
	posts.Post("/", s.CreatePost)
	posts.Post("/:id/comments", s.CreateComment)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/pin", s.PinPost)
	posts.Delete("/:id/pin", s.UnpinPost)
	posts.Put("/:id/reaction", s.SetPostReaction)
	posts.Delete("/:id/reaction", s.ClearPostReaction)
	posts.Get("/:id/reaction", s.GetMyPostReaction)
	posts.Get("/:id/reactions", s.ListPostReactions)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	comments := api.Group("/comments")
	comments.Put("/:id/reaction", s.SetCommentReaction)
	comments.Delete("/:id/reaction", s.ClearCommentReaction)
	comments.Get("/:id/reactions", s.ListCommentReactions)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func seedServerPost(t *testing.T, db *gorm.DB, authorID uint, visibility models.Visibility) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: authorID, Content: "seeded", Visibility: visibility}
	require.NoError(t, db.Create(post).Error)
	return post
}
