package service

import (
	"context"
	"unicode/utf8"

	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/notifications"
	"pulse/internal/repository"
)

const maxSymbolRunes = 8

type ReactionService struct {
	reactionRepo repository.ReactionRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	resolver     VisibilityResolver
	sink         notifications.Sink
}

type SetReactionInput struct {
	UserID      uint
	SubjectType models.SubjectType
	SubjectID   uint
	Kind        models.ReactionKind
	Symbol      string
}

// ReactionResult is the outcome of a reaction mutation. Counts are the
// authoritative values read inside the mutation's transaction.
type ReactionResult struct {
	Applied  bool                  `json:"applied"`
	Reaction *models.Reaction      `json:"reaction,omitempty"`
	Counts   models.ReactionCounts `json:"counts"`
}

func NewReactionService(
	reactionRepo repository.ReactionRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	resolver VisibilityResolver,
	sink notifications.Sink,
) *ReactionService {
	if sink == nil {
		sink = notifications.NopSink{}
	}
	return &ReactionService{
		reactionRepo: reactionRepo,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		resolver:     resolver,
		sink:         sink,
	}
}

// resolveSubjectPost finds the post that governs visibility for a subject:
// the post itself, or the post a comment hangs off.
func (s *ReactionService) resolveSubjectPost(ctx context.Context, subjectType models.SubjectType, subjectID uint) (*models.Post, error) {
	if subjectType == models.SubjectPost {
		return s.postRepo.GetByID(ctx, subjectID)
	}
	comment, err := s.commentRepo.GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, comment.PostID)
}

func validateReactionInput(in SetReactionInput) error {
	if !in.SubjectType.Valid() {
		return models.NewValidationError("Invalid subject_type")
	}
	if !in.Kind.Valid() {
		return models.NewValidationError("Invalid reaction kind")
	}
	if in.Kind == models.ReactionEmoji {
		if in.Symbol == "" {
			return models.NewValidationError("EMOJI reactions require a symbol")
		}
		if utf8.RuneCountInString(in.Symbol) > maxSymbolRunes {
			return models.NewValidationError("Reaction symbol too long")
		}
	} else if in.Symbol != "" {
		return models.NewValidationError("LIKE reactions carry no symbol")
	}
	return nil
}

// SetReaction applies, toggles off, or replaces the user's reaction on a post
// or comment. Reacting requires read access to the governing post.
func (s *ReactionService) SetReaction(ctx context.Context, in SetReactionInput) (*ReactionResult, error) {
	if err := validateReactionInput(in); err != nil {
		return nil, err
	}
	post, err := s.resolveSubjectPost(ctx, in.SubjectType, in.SubjectID)
	if err != nil {
		return nil, err
	}
	if err := checkCanView(ctx, s.resolver, in.UserID, post); err != nil {
		return nil, err
	}

	applied, counts, err := s.reactionRepo.Set(ctx, in.SubjectType, in.SubjectID, in.UserID, in.Kind, in.Symbol)
	if err != nil {
		return nil, err
	}
	middleware.MutationsTotal.WithLabelValues("reaction", "set").Inc()

	event := notifications.EventReactionApplied
	if !applied {
		event = notifications.EventReactionCleared
	}
	s.sink.Emit(ctx, notifications.Event{
		Event:       event,
		SubjectType: in.SubjectType,
		SubjectID:   in.SubjectID,
		ActorID:     in.UserID,
		ScopeID:     post.ScopeID,
	})

	result := &ReactionResult{Applied: applied, Counts: counts}
	if applied {
		result.Reaction = &models.Reaction{
			SubjectType: in.SubjectType,
			SubjectID:   in.SubjectID,
			UserID:      in.UserID,
			Kind:        in.Kind,
			Symbol:      in.Symbol,
		}
	}
	return result, nil
}

// ClearReaction removes the user's reaction regardless of its kind. Clearing
// when nothing is set succeeds without emitting an event.
func (s *ReactionService) ClearReaction(ctx context.Context, userID uint, subjectType models.SubjectType, subjectID uint) (*ReactionResult, error) {
	if !subjectType.Valid() {
		return nil, models.NewValidationError("Invalid subject_type")
	}
	post, err := s.resolveSubjectPost(ctx, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	if err := checkCanView(ctx, s.resolver, userID, post); err != nil {
		return nil, err
	}

	removed, counts, err := s.reactionRepo.Clear(ctx, subjectType, subjectID, userID)
	if err != nil {
		return nil, err
	}
	if removed {
		middleware.MutationsTotal.WithLabelValues("reaction", "clear").Inc()
		s.sink.Emit(ctx, notifications.Event{
			Event:       notifications.EventReactionCleared,
			SubjectType: subjectType,
			SubjectID:   subjectID,
			ActorID:     userID,
			ScopeID:     post.ScopeID,
		})
	}
	return &ReactionResult{Applied: false, Counts: counts}, nil
}

// GetReactionForViewer returns the viewer's current reaction on a subject, or
// nil when none is set.
func (s *ReactionService) GetReactionForViewer(ctx context.Context, viewerID uint, subjectType models.SubjectType, subjectID uint) (*models.Reaction, error) {
	if !subjectType.Valid() {
		return nil, models.NewValidationError("Invalid subject_type")
	}
	post, err := s.resolveSubjectPost(ctx, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	if err := checkCanView(ctx, s.resolver, viewerID, post); err != nil {
		return nil, err
	}
	return s.reactionRepo.GetForViewer(ctx, subjectType, subjectID, viewerID)
}

// ListReactions returns the per-symbol histogram for a subject, biggest
// buckets first.
func (s *ReactionService) ListReactions(ctx context.Context, viewerID uint, subjectType models.SubjectType, subjectID uint) ([]models.SymbolCount, error) {
	if !subjectType.Valid() {
		return nil, models.NewValidationError("Invalid subject_type")
	}
	post, err := s.resolveSubjectPost(ctx, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	if err := checkCanView(ctx, s.resolver, viewerID, post); err != nil {
		return nil, err
	}
	return s.reactionRepo.CountsBySymbol(ctx, subjectType, subjectID)
}
