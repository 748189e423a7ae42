package repository

import (
	"context"
	"errors"

	"pulse/internal/cache"
	"pulse/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
// Every mutation runs as one transaction including its counter updates.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	SetPinned(ctx context.Context, id uint, pinned bool) error
	DeleteCascade(ctx context.Context, id uint) error
	ListOrdered(ctx context.Context, scopeID *uint, limit, offset int) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).First(&post, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", id)
		}
		return nil, err
	}
	return &post, nil
}

// Update persists the editable columns only. Counters move exclusively
// through their own atomic updates; writing them here would stomp whatever
// committed between the caller's read and this write.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(post).
		Select("content", "media_refs", "link_previews", "visibility", "edited_at").
		Updates(post)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("post", post.ID)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) SetPinned(ctx context.Context, id uint, pinned bool) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("is_pinned", pinned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// DeleteCascade removes a post together with all its comments and reactions
// (on the post and on every comment) in one transaction. A partial cascade
// never commits.
func (r *postRepository) DeleteCascade(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).
			Where("post_id = ?", id).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		if len(commentIDs) > 0 {
			if err := tx.Where("subject_type = ? AND subject_id IN ?", models.SubjectComment, commentIDs).
				Delete(&models.Reaction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("subject_type = ? AND subject_id = ?", models.SubjectPost, id).
			Delete(&models.Reaction{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("post", id)
		}

		// The cascade must leave nothing behind; an orphan here is a bug.
		var orphans int64
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).Count(&orphans).Error; err != nil {
			return err
		}
		if orphans > 0 {
			return models.NewConsistencyViolationError("post delete left orphaned comments")
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// ListOrdered returns one chunk of the feed ordering. Scope feeds sort pinned
// posts before everything else; within each group newest first, id as a
// stable tie-break. Visibility is the caller's concern.
func (r *postRepository) ListOrdered(ctx context.Context, scopeID *uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if scopeID != nil {
		q = q.Where("scope_id = ?", *scopeID).
			Order("is_pinned DESC, created_at DESC, id DESC")
	} else {
		q = q.Order("created_at DESC, id DESC")
	}
	err := q.Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}
