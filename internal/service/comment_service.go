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
	maxCommentContentLen    = 2000
	defaultCommentPageLimit = 50
	maxCommentPageLimit     = 100
)

type CommentService struct {
	commentRepo  repository.CommentRepository
	postRepo     repository.PostRepository
	reactionRepo repository.ReactionRepository
	resolver     VisibilityResolver
	directory    IdentityDirectory
	sink         notifications.Sink
}

type AddCommentInput struct {
	AuthorID        uint
	PostID          uint
	ParentCommentID *uint
	Content         string
}

type UpdateCommentInput struct {
	ActorID   uint
	CommentID uint
	Content   string
}

type ListCommentsInput struct {
	ViewerID uint
	PostID   uint
	Limit    int
	Offset   int
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	reactionRepo repository.ReactionRepository,
	resolver VisibilityResolver,
	directory IdentityDirectory,
	sink notifications.Sink,
) *CommentService {
	if sink == nil {
		sink = notifications.NopSink{}
	}
	return &CommentService{
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		reactionRepo: reactionRepo,
		resolver:     resolver,
		directory:    directory,
		sink:         sink,
	}
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentContentLen {
		return models.NewValidationError("Comment too long (max 2000 characters)")
	}
	return nil
}

// AddComment creates a comment or a reply. Commenting requires read access to
// the post; the two-level depth rule is enforced inside the insert
// transaction.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := checkCanView(ctx, s.resolver, in.AuthorID, post); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:          in.PostID,
		AuthorID:        in.AuthorID,
		ParentCommentID: in.ParentCommentID,
		Content:         in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	middleware.MutationsTotal.WithLabelValues("comment", "create").Inc()

	s.sink.Emit(ctx, notifications.Event{
		Event:       notifications.EventCommentAdded,
		SubjectType: models.SubjectComment,
		SubjectID:   comment.ID,
		ActorID:     in.AuthorID,
		ScopeID:     post.ScopeID,
	})
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != in.ActorID {
		return nil, models.NewNotAuthorizedError("Only the author can edit a comment")
	}

	now := time.Now().UTC()
	comment.Content = in.Content
	comment.EditedAt = &now
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	middleware.MutationsTotal.WithLabelValues("comment", "update").Inc()
	return comment, nil
}

// DeleteComment removes a comment; a top-level delete takes its replies with
// it. Allowed for the comment author, the post author, and scope moderators.
func (s *CommentService) DeleteComment(ctx context.Context, actorID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	post, err := s.postRepo.GetByID(ctx, comment.PostID)
	if err != nil {
		return err
	}
	if comment.AuthorID != actorID && post.AuthorID != actorID {
		if post.ScopeID == nil {
			return models.NewNotAuthorizedError("Not allowed to delete this comment")
		}
		ok, err := s.resolver.CanModerate(ctx, actorID, *post.ScopeID)
		if err != nil {
			return models.NewVisibilityUnavailableError(err)
		}
		if !ok {
			return models.NewNotAuthorizedError("Not allowed to delete this comment")
		}
	}

	if err := s.commentRepo.DeleteCascade(ctx, commentID); err != nil {
		return err
	}
	middleware.MutationsTotal.WithLabelValues("comment", "delete").Inc()

	s.sink.Emit(ctx, notifications.Event{
		Event:       notifications.EventCommentDeleted,
		SubjectType: models.SubjectComment,
		SubjectID:   commentID,
		ActorID:     actorID,
		ScopeID:     post.ScopeID,
	})
	return nil
}

// ListComments returns a page of the post's comment tree, top-level comments
// oldest first with their replies attached. Requires read access to the post.
func (s *CommentService) ListComments(ctx context.Context, in ListCommentsInput) ([]*models.Comment, error) {
	if in.Limit <= 0 {
		in.Limit = defaultCommentPageLimit
	}
	if in.Limit > maxCommentPageLimit {
		in.Limit = maxCommentPageLimit
	}
	if in.Offset < 0 {
		return nil, models.NewValidationError("Offset must not be negative")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := checkCanView(ctx, s.resolver, in.ViewerID, post); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, in.PostID, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	s.decorateComments(ctx, in.ViewerID, comments)
	return comments, nil
}

// decorateComments attaches author snapshots and the viewer's reactions over
// the whole page, replies included. Enrichment failures degrade silently.
func (s *CommentService) decorateComments(ctx context.Context, viewerID uint, comments []*models.Comment) {
	var flat []*models.Comment
	for _, c := range comments {
		flat = append(flat, c)
		flat = append(flat, c.Replies...)
	}
	if len(flat) == 0 {
		return
	}

	for _, c := range flat {
		c.Author = lookupAuthor(ctx, s.directory, c.AuthorID)
	}

	if viewerID == 0 || s.reactionRepo == nil {
		return
	}
	ids := make([]uint, len(flat))
	for i, c := range flat {
		ids[i] = c.ID
	}
	reactions, err := s.reactionRepo.ListForViewer(ctx, models.SubjectComment, ids, viewerID)
	if err != nil {
		return
	}
	for _, c := range flat {
		c.ViewerReaction = reactions[c.ID]
	}
}
