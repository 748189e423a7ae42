package service

import (
	"context"
	"testing"

	"pulse/internal/models"
	"pulse/internal/notifications"

	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	setPinnedFn     func(context.Context, uint, bool) error
	deleteCascadeFn func(context.Context, uint) error
	listOrderedFn   func(context.Context, *uint, int, int) ([]*models.Post, error)
	listByAuthorFn  func(context.Context, uint, int, int) ([]*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) SetPinned(ctx context.Context, id uint, pinned bool) error {
	return s.setPinnedFn(ctx, id, pinned)
}
func (s *postRepoStub) DeleteCascade(ctx context.Context, id uint) error {
	return s.deleteCascadeFn(ctx, id)
}
func (s *postRepoStub) ListOrdered(ctx context.Context, scopeID *uint, limit, offset int) ([]*models.Post, error) {
	return s.listOrderedFn(ctx, scopeID, limit, offset)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: 1, Visibility: models.VisibilityPublic}, nil
		},
		updateFn:        func(_ context.Context, _ *models.Post) error { return nil },
		setPinnedFn:     func(_ context.Context, _ uint, _ bool) error { return nil },
		deleteCascadeFn: func(_ context.Context, _ uint) error { return nil },
		listOrderedFn: func(_ context.Context, _ *uint, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		listByAuthorFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	updateFn        func(context.Context, *models.Comment) error
	deleteCascadeFn func(context.Context, uint) error
	listByPostFn    func(context.Context, uint, int, int) ([]*models.Comment, error)
	countTopLevelFn func(context.Context, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) DeleteCascade(ctx context.Context, id uint) error {
	return s.deleteCascadeFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) CountTopLevel(ctx context.Context, postID uint) (int64, error) {
	return s.countTopLevelFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 1, AuthorID: 1}, nil
		},
		updateFn:        func(_ context.Context, _ *models.Comment) error { return nil },
		deleteCascadeFn: func(_ context.Context, _ uint) error { return nil },
		listByPostFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) {
			return nil, nil
		},
		countTopLevelFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// reactionRepoStub is a stub for repository.ReactionRepository.
type reactionRepoStub struct {
	setFn            func(context.Context, models.SubjectType, uint, uint, models.ReactionKind, string) (bool, models.ReactionCounts, error)
	clearFn          func(context.Context, models.SubjectType, uint, uint) (bool, models.ReactionCounts, error)
	getForViewerFn   func(context.Context, models.SubjectType, uint, uint) (*models.Reaction, error)
	listForViewerFn  func(context.Context, models.SubjectType, []uint, uint) (map[uint]*models.Reaction, error)
	countsBySymbolFn func(context.Context, models.SubjectType, uint) ([]models.SymbolCount, error)
}

func (s *reactionRepoStub) Set(ctx context.Context, st models.SubjectType, subjectID, userID uint, kind models.ReactionKind, symbol string) (bool, models.ReactionCounts, error) {
	return s.setFn(ctx, st, subjectID, userID, kind, symbol)
}
func (s *reactionRepoStub) Clear(ctx context.Context, st models.SubjectType, subjectID, userID uint) (bool, models.ReactionCounts, error) {
	return s.clearFn(ctx, st, subjectID, userID)
}
func (s *reactionRepoStub) GetForViewer(ctx context.Context, st models.SubjectType, subjectID, userID uint) (*models.Reaction, error) {
	return s.getForViewerFn(ctx, st, subjectID, userID)
}
func (s *reactionRepoStub) ListForViewer(ctx context.Context, st models.SubjectType, subjectIDs []uint, userID uint) (map[uint]*models.Reaction, error) {
	return s.listForViewerFn(ctx, st, subjectIDs, userID)
}
func (s *reactionRepoStub) CountsBySymbol(ctx context.Context, st models.SubjectType, subjectID uint) ([]models.SymbolCount, error) {
	return s.countsBySymbolFn(ctx, st, subjectID)
}

func noopReactionRepo() *reactionRepoStub {
	return &reactionRepoStub{
		setFn: func(_ context.Context, _ models.SubjectType, _, _ uint, _ models.ReactionKind, _ string) (bool, models.ReactionCounts, error) {
			return true, models.ReactionCounts{}, nil
		},
		clearFn: func(_ context.Context, _ models.SubjectType, _, _ uint) (bool, models.ReactionCounts, error) {
			return false, models.ReactionCounts{}, nil
		},
		getForViewerFn: func(_ context.Context, _ models.SubjectType, _, _ uint) (*models.Reaction, error) {
			return nil, nil
		},
		listForViewerFn: func(_ context.Context, _ models.SubjectType, _ []uint, _ uint) (map[uint]*models.Reaction, error) {
			return map[uint]*models.Reaction{}, nil
		},
		countsBySymbolFn: func(_ context.Context, _ models.SubjectType, _ uint) ([]models.SymbolCount, error) {
			return nil, nil
		},
	}
}

// resolverStub is a stub VisibilityResolver.
type resolverStub struct {
	canViewFn     func(context.Context, uint, uint, *uint, models.Visibility) (bool, error)
	canModerateFn func(context.Context, uint, uint) (bool, error)
}

func (s *resolverStub) CanView(ctx context.Context, viewerID, authorID uint, scopeID *uint, visibility models.Visibility) (bool, error) {
	return s.canViewFn(ctx, viewerID, authorID, scopeID, visibility)
}
func (s *resolverStub) CanModerate(ctx context.Context, userID, scopeID uint) (bool, error) {
	return s.canModerateFn(ctx, userID, scopeID)
}

func allowAllResolver() *resolverStub {
	return &resolverStub{
		canViewFn: func(_ context.Context, _, _ uint, _ *uint, _ models.Visibility) (bool, error) {
			return true, nil
		},
		canModerateFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
	}
}

func denyAllResolver() *resolverStub {
	return &resolverStub{
		canViewFn: func(_ context.Context, _, _ uint, _ *uint, _ models.Visibility) (bool, error) {
			return false, nil
		},
		canModerateFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
	}
}

// directoryStub is a stub IdentityDirectory.
type directoryStub struct {
	lookupFn func(context.Context, uint) (*models.AuthorSnapshot, error)
}

func (s *directoryStub) Lookup(ctx context.Context, userID uint) (*models.AuthorSnapshot, error) {
	return s.lookupFn(ctx, userID)
}

func emptyDirectory() *directoryStub {
	return &directoryStub{
		lookupFn: func(_ context.Context, _ uint) (*models.AuthorSnapshot, error) { return nil, nil },
	}
}

// sinkRecorder captures emitted events in order.
type sinkRecorder struct {
	events []notifications.Event
}

func (s *sinkRecorder) Emit(_ context.Context, event notifications.Event) {
	s.events = append(s.events, event)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}
