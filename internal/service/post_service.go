package service

import (
	"context"
	"strings"
	"time"

	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/notifications"
	"pulse/internal/repository"
)

const (
	maxPostContentLen = 10000
	maxMediaRefs      = 10
)

type PostService struct {
	postRepo     repository.PostRepository
	reactionRepo repository.ReactionRepository
	resolver     VisibilityResolver
	directory    IdentityDirectory
	sink         notifications.Sink
}

type CreatePostInput struct {
	AuthorID     uint
	Content      string
	MediaRefs    []string
	LinkPreviews []models.LinkPreview
	Visibility   models.Visibility
	ScopeID      *uint
}

type UpdatePostInput struct {
	ActorID      uint
	PostID       uint
	Content      string
	MediaRefs    []string
	LinkPreviews []models.LinkPreview
	// Visibility is optional; empty keeps the stored value. A change takes
	// effect on the next read, existing viewers are not grandfathered.
	Visibility models.Visibility
}

func NewPostService(
	postRepo repository.PostRepository,
	reactionRepo repository.ReactionRepository,
	resolver VisibilityResolver,
	directory IdentityDirectory,
	sink notifications.Sink,
) *PostService {
	if sink == nil {
		sink = notifications.NopSink{}
	}
	return &PostService{
		postRepo:     postRepo,
		reactionRepo: reactionRepo,
		resolver:     resolver,
		directory:    directory,
		sink:         sink,
	}
}

func validatePostContent(content string, mediaRefs []string, previews []models.LinkPreview) error {
	if strings.TrimSpace(content) == "" && len(mediaRefs) == 0 && len(previews) == 0 {
		return models.NewValidationError("Post needs content, media, or a link preview")
	}
	if len(content) > maxPostContentLen {
		return models.NewValidationError("Content too long (max 10000 characters)")
	}
	if len(mediaRefs) > maxMediaRefs {
		return models.NewValidationError("Too many media attachments (max 10)")
	}
	for _, ref := range mediaRefs {
		if strings.TrimSpace(ref) == "" {
			return models.NewValidationError("Media references must not be empty")
		}
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validatePostContent(in.Content, in.MediaRefs, in.LinkPreviews); err != nil {
		return nil, err
	}
	if !in.Visibility.Valid() {
		return nil, models.NewValidationError("Invalid visibility")
	}
	if in.Visibility == models.VisibilityScope && in.ScopeID == nil {
		return nil, models.NewValidationError("SCOPE visibility requires a scope_id")
	}
	if in.Visibility != models.VisibilityScope && in.ScopeID != nil {
		return nil, models.NewValidationError("scope_id is only valid with SCOPE visibility")
	}

	post := &models.Post{
		AuthorID:     in.AuthorID,
		ScopeID:      in.ScopeID,
		Content:      in.Content,
		MediaRefs:    models.StringSlice(in.MediaRefs),
		LinkPreviews: models.LinkPreviews(in.LinkPreviews),
		Visibility:   in.Visibility,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	middleware.MutationsTotal.WithLabelValues("post", "create").Inc()

	s.sink.Emit(ctx, notifications.Event{
		Event:       notifications.EventPostCreated,
		SubjectType: models.SubjectPost,
		SubjectID:   post.ID,
		ActorID:     in.AuthorID,
		ScopeID:     post.ScopeID,
	})
	return post, nil
}

// GetPost returns a single post the viewer may read, decorated with the
// author snapshot and the viewer's own reaction.
func (s *PostService) GetPost(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := checkCanView(ctx, s.resolver, viewerID, post); err != nil {
		return nil, err
	}
	s.decoratePost(ctx, viewerID, post)
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if err := validatePostContent(in.Content, in.MediaRefs, in.LinkPreviews); err != nil {
		return nil, err
	}
	if in.Visibility != "" && !in.Visibility.Valid() {
		return nil, models.NewValidationError("Invalid visibility")
	}
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.ActorID {
		return nil, models.NewNotAuthorizedError("Only the author can edit a post")
	}
	if in.Visibility != "" {
		if in.Visibility == models.VisibilityScope && post.ScopeID == nil {
			return nil, models.NewValidationError("SCOPE visibility requires a scoped post")
		}
		if in.Visibility != models.VisibilityScope && post.ScopeID != nil {
			return nil, models.NewValidationError("Scoped posts keep SCOPE visibility")
		}
		post.Visibility = in.Visibility
	}

	now := time.Now().UTC()
	post.Content = in.Content
	post.MediaRefs = models.StringSlice(in.MediaRefs)
	post.LinkPreviews = models.LinkPreviews(in.LinkPreviews)
	post.EditedAt = &now
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	middleware.MutationsTotal.WithLabelValues("post", "update").Inc()
	return post, nil
}

// DeletePost removes a post with its full comment and reaction cascade.
// Allowed for the author, and for scope moderators on scoped posts.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		if post.ScopeID == nil {
			return models.NewNotAuthorizedError("Only the author can delete this post")
		}
		ok, err := s.resolver.CanModerate(ctx, actorID, *post.ScopeID)
		if err != nil {
			return models.NewVisibilityUnavailableError(err)
		}
		if !ok {
			return models.NewNotAuthorizedError("Only the author or a scope moderator can delete this post")
		}
	}

	if err := s.postRepo.DeleteCascade(ctx, postID); err != nil {
		return err
	}
	middleware.MutationsTotal.WithLabelValues("post", "delete").Inc()

	s.sink.Emit(ctx, notifications.Event{
		Event:       notifications.EventPostDeleted,
		SubjectType: models.SubjectPost,
		SubjectID:   postID,
		ActorID:     actorID,
		ScopeID:     post.ScopeID,
	})
	return nil
}

// PinPost marks a scoped post as pinned so scope feeds sort it first.
// Moderator-only; pinning has no meaning outside a scope.
func (s *PostService) PinPost(ctx context.Context, actorID, postID uint) error {
	return s.setPinned(ctx, actorID, postID, true)
}

func (s *PostService) UnpinPost(ctx context.Context, actorID, postID uint) error {
	return s.setPinned(ctx, actorID, postID, false)
}

func (s *PostService) setPinned(ctx context.Context, actorID, postID uint, pinned bool) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.ScopeID == nil {
		return models.NewValidationError("Only scope posts can be pinned")
	}
	ok, err := s.resolver.CanModerate(ctx, actorID, *post.ScopeID)
	if err != nil {
		return models.NewVisibilityUnavailableError(err)
	}
	if !ok {
		return models.NewNotAuthorizedError("Only a scope moderator can pin posts")
	}
	if err := s.postRepo.SetPinned(ctx, postID, pinned); err != nil {
		return err
	}
	middleware.MutationsTotal.WithLabelValues("post", "pin").Inc()
	return nil
}

// decoratePost attaches read-time enrichment. Failures here degrade the
// response instead of failing it; counts and content are already final.
func (s *PostService) decoratePost(ctx context.Context, viewerID uint, post *models.Post) {
	post.Author = lookupAuthor(ctx, s.directory, post.AuthorID)
	if viewerID != 0 && s.reactionRepo != nil {
		if reaction, err := s.reactionRepo.GetForViewer(ctx, models.SubjectPost, post.ID, viewerID); err == nil {
			post.ViewerReaction = reaction
		}
	}
}
