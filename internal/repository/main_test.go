package repository

import (
	"fmt"
	"testing"
	"time"

	"pulse/internal/database"
	"pulse/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory database per test so tests can run in
// parallel without sharing rows.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenEphemeral()
	require.NoError(t, err)
	return db
}

func seedPost(t *testing.T, db *gorm.DB, authorID uint, opts ...func(*models.Post)) *models.Post {
	t.Helper()
	post := &models.Post{
		AuthorID:   authorID,
		Content:    fmt.Sprintf("post by %d", authorID),
		Visibility: models.VisibilityPublic,
	}
	for _, opt := range opts {
		opt(post)
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func withScope(scopeID uint) func(*models.Post) {
	return func(p *models.Post) {
		p.ScopeID = &scopeID
		p.Visibility = models.VisibilityScope
	}
}

func withCreatedAt(at time.Time) func(*models.Post) {
	return func(p *models.Post) {
		p.CreatedAt = at
	}
}

func reloadPost(t *testing.T, db *gorm.DB, id uint) *models.Post {
	t.Helper()
	var post models.Post
	require.NoError(t, db.First(&post, id).Error)
	return &post
}

func reloadComment(t *testing.T, db *gorm.DB, id uint) *models.Comment {
	t.Helper()
	var comment models.Comment
	require.NoError(t, db.First(&comment, id).Error)
	return &comment
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}
