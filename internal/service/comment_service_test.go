package service

import (
	"context"
	"strings"
	"testing"

	"pulse/internal/models"
	"pulse/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentService(comments *commentRepoStub, posts *postRepoStub, resolver *resolverStub, sink notifications.Sink) *CommentService {
	return NewCommentService(comments, posts, noopReactionRepo(), resolver, emptyDirectory(), sink)
}

func TestCommentService_AddComment_Validation(t *testing.T) {
	t.Parallel()

	svc := newCommentService(noopCommentRepo(), noopPostRepo(), allowAllResolver(), nil)
	ctx := context.Background()

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.AddComment(ctx, AddCommentInput{AuthorID: 1, PostID: 1})
		requireCode(t, err, models.CodeValidation)
	})

	t.Run("whitespace content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.AddComment(ctx, AddCommentInput{AuthorID: 1, PostID: 1, Content: "   "})
		requireCode(t, err, models.CodeValidation)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.AddComment(ctx, AddCommentInput{
			AuthorID: 1,
			PostID:   1,
			Content:  strings.Repeat("x", maxCommentContentLen+1),
		})
		requireCode(t, err, models.CodeValidation)
	})
}

func TestCommentService_AddComment_RequiresReadAccess(t *testing.T) {
	t.Parallel()

	svc := newCommentService(noopCommentRepo(), noopPostRepo(), denyAllResolver(), nil)
	_, err := svc.AddComment(context.Background(), AddCommentInput{AuthorID: 2, PostID: 1, Content: "hi"})
	requireCode(t, err, models.CodeNotVisible)
}

func TestCommentService_AddComment_EmitsEvent(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	comments.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 7
		return nil
	}
	sink := &sinkRecorder{}
	svc := newCommentService(comments, noopPostRepo(), allowAllResolver(), sink)

	parent := uint(3)
	comment, err := svc.AddComment(context.Background(), AddCommentInput{
		AuthorID:        2,
		PostID:          1,
		ParentCommentID: &parent,
		Content:         "a reply",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), comment.ID)
	require.NotNil(t, comment.ParentCommentID)

	require.Len(t, sink.events, 1)
	assert.Equal(t, notifications.EventCommentAdded, sink.events[0].Event)
	assert.Equal(t, models.SubjectComment, sink.events[0].SubjectType)
	assert.Equal(t, uint(7), sink.events[0].SubjectID)
}

func TestCommentService_AddComment_InvalidParentPropagates(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	comments.createFn = func(_ context.Context, _ *models.Comment) error {
		return models.NewInvalidParentError("cannot reply to a reply")
	}
	sink := &sinkRecorder{}
	svc := newCommentService(comments, noopPostRepo(), allowAllResolver(), sink)

	_, err := svc.AddComment(context.Background(), AddCommentInput{AuthorID: 2, PostID: 1, Content: "x"})
	requireCode(t, err, models.CodeInvalidParent)
	assert.Empty(t, sink.events)
}

func TestCommentService_UpdateComment_AuthorOnly(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: 1, AuthorID: 1, Content: "original"}, nil
	}
	svc := newCommentService(comments, noopPostRepo(), allowAllResolver(), nil)
	ctx := context.Background()

	_, err := svc.UpdateComment(ctx, UpdateCommentInput{ActorID: 2, CommentID: 1, Content: "hijack"})
	requireCode(t, err, models.CodeNotAuthorized)

	comment, err := svc.UpdateComment(ctx, UpdateCommentInput{ActorID: 1, CommentID: 1, Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", comment.Content)
	require.NotNil(t, comment.EditedAt)
}

func TestCommentService_DeleteComment_Authorization(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	scope := uint(5)

	// Comment by user 2 on a scoped post authored by user 1.
	fixtureComments := func() *commentRepoStub {
		comments := noopCommentRepo()
		comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 10, AuthorID: 2}, nil
		}
		return comments
	}
	fixturePosts := func() *postRepoStub {
		posts := noopPostRepo()
		posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: 1, ScopeID: &scope, Visibility: models.VisibilityScope}, nil
		}
		return posts
	}

	t.Run("comment author", func(t *testing.T) {
		t.Parallel()
		sink := &sinkRecorder{}
		svc := newCommentService(fixtureComments(), fixturePosts(), denyAllResolver(), sink)
		require.NoError(t, svc.DeleteComment(ctx, 2, 99))
		require.Len(t, sink.events, 1)
		assert.Equal(t, notifications.EventCommentDeleted, sink.events[0].Event)
	})

	t.Run("post author", func(t *testing.T) {
		t.Parallel()
		svc := newCommentService(fixtureComments(), fixturePosts(), denyAllResolver(), nil)
		require.NoError(t, svc.DeleteComment(ctx, 1, 99))
	})

	t.Run("scope moderator", func(t *testing.T) {
		t.Parallel()
		svc := newCommentService(fixtureComments(), fixturePosts(), allowAllResolver(), nil)
		require.NoError(t, svc.DeleteComment(ctx, 42, 99))
	})

	t.Run("stranger", func(t *testing.T) {
		t.Parallel()
		svc := newCommentService(fixtureComments(), fixturePosts(), denyAllResolver(), nil)
		err := svc.DeleteComment(ctx, 42, 99)
		requireCode(t, err, models.CodeNotAuthorized)
	})
}

func TestCommentService_ListComments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("requires read access", func(t *testing.T) {
		t.Parallel()
		svc := newCommentService(noopCommentRepo(), noopPostRepo(), denyAllResolver(), nil)
		_, err := svc.ListComments(ctx, ListCommentsInput{ViewerID: 2, PostID: 1})
		requireCode(t, err, models.CodeNotVisible)
	})

	t.Run("negative offset", func(t *testing.T) {
		t.Parallel()
		svc := newCommentService(noopCommentRepo(), noopPostRepo(), allowAllResolver(), nil)
		_, err := svc.ListComments(ctx, ListCommentsInput{ViewerID: 2, PostID: 1, Offset: -1})
		requireCode(t, err, models.CodeValidation)
	})

	t.Run("clamps limit and decorates viewer reactions", func(t *testing.T) {
		t.Parallel()
		comments := noopCommentRepo()
		var gotLimit int
		comments.listByPostFn = func(_ context.Context, _ uint, limit, _ int) ([]*models.Comment, error) {
			gotLimit = limit
			top := &models.Comment{ID: 1, PostID: 1, AuthorID: 3}
			top.Replies = []*models.Comment{{ID: 2, PostID: 1, AuthorID: 4, ParentCommentID: &top.ID}}
			return []*models.Comment{top}, nil
		}
		reactions := noopReactionRepo()
		reactions.listForViewerFn = func(_ context.Context, _ models.SubjectType, ids []uint, _ uint) (map[uint]*models.Reaction, error) {
			assert.ElementsMatch(t, []uint{1, 2}, ids)
			return map[uint]*models.Reaction{2: {SubjectID: 2, Kind: models.ReactionLike}}, nil
		}
		svc := NewCommentService(comments, noopPostRepo(), reactions, allowAllResolver(), emptyDirectory(), nil)

		page, err := svc.ListComments(ctx, ListCommentsInput{ViewerID: 9, PostID: 1, Limit: 500})
		require.NoError(t, err)
		assert.Equal(t, maxCommentPageLimit, gotLimit)
		require.Len(t, page, 1)
		assert.Nil(t, page[0].ViewerReaction)
		require.Len(t, page[0].Replies, 1)
		require.NotNil(t, page[0].Replies[0].ViewerReaction)
	})
}
