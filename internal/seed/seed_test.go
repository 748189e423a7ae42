package seed

import (
	"context"
	"testing"

	"pulse/internal/database"
	"pulse/internal/identity"
	"pulse/internal/models"
	"pulse/internal/visibility"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallProfile() Profile {
	return Profile{
		Users:              5,
		Posts:              10,
		Scopes:             1,
		PinnedPerScope:     1,
		MaxCommentsPerPost: 3,
		ReplyRate:          0.5,
		ReactionRate:       0.5,
		EmojiPalette:       []string{"🔥", "🎉"},
	}
}

func TestSeederRun_CountersMatchRows(t *testing.T) {
	db, err := database.OpenEphemeral()
	require.NoError(t, err)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s := NewSeeder(db, rdb)
	require.NoError(t, s.Run(context.Background(), smallProfile()))

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	require.Len(t, posts, 10)

	// Every denormalized counter must match the rows behind it.
	for _, post := range posts {
		var commentRows int64
		require.NoError(t, db.Model(&models.Comment{}).
			Where("post_id = ?", post.ID).Count(&commentRows).Error)
		assert.Equal(t, commentRows, int64(post.CommentsCount), "post %d comments", post.ID)

		var likeRows int64
		require.NoError(t, db.Model(&models.Reaction{}).
			Where("subject_type = ? AND subject_id = ? AND kind = ?",
				models.SubjectPost, post.ID, models.ReactionLike).Count(&likeRows).Error)
		assert.Equal(t, likeRows, int64(post.LikesCount), "post %d likes", post.ID)

		var emojiRows int64
		require.NoError(t, db.Model(&models.Reaction{}).
			Where("subject_type = ? AND subject_id = ? AND kind = ?",
				models.SubjectPost, post.ID, models.ReactionEmoji).Count(&emojiRows).Error)
		assert.Equal(t, emojiRows, int64(post.ReactionsCount), "post %d reactions", post.ID)
	}

	// Identity snapshots were published for every seeded user.
	for userID := uint(1); userID <= 5; userID++ {
		assert.True(t, mr.Exists(identity.ProfileKey(userID)), "identity for user %d", userID)
	}
	assert.True(t, mr.Exists(visibility.MembersKey(1)))
	assert.True(t, mr.Exists(visibility.ModeratorsKey(1)))
}

func TestSeederRun_NoRedis(t *testing.T) {
	db, err := database.OpenEphemeral()
	require.NoError(t, err)

	s := NewSeeder(db, nil)
	profile := smallProfile()
	profile.Scopes = 0
	require.NoError(t, s.Run(context.Background(), profile))

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.EqualValues(t, 10, count)
}

func TestSeederClearAll(t *testing.T) {
	db, err := database.OpenEphemeral()
	require.NoError(t, err)

	s := NewSeeder(db, nil)
	profile := smallProfile()
	profile.Scopes = 0
	require.NoError(t, s.Run(context.Background(), profile))
	require.NoError(t, s.ClearAll())

	for _, model := range []any{&models.Post{}, &models.Comment{}, &models.Reaction{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestFactoryBuildPost(t *testing.T) {
	factory := NewFactory(DefaultProfile())

	scope := uint(3)
	post := factory.BuildPost(7, &scope)
	assert.Equal(t, models.VisibilityScope, post.Visibility)
	assert.Equal(t, uint(7), post.AuthorID)
	assert.NotEmpty(t, post.Content)

	global := factory.BuildPost(7, nil)
	assert.NotEqual(t, models.VisibilityScope, global.Visibility)
	assert.Nil(t, global.ScopeID)
	assert.False(t, global.CreatedAt.IsZero())
}
