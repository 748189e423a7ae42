package repository

import (
	"context"
	"errors"

	"pulse/internal/cache"
	"pulse/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations.
// The tree is at most two levels deep; parent validation happens inside the
// insert transaction so a concurrent parent delete cannot slip a reply in.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	DeleteCascade(ctx context.Context, id uint) error
	ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error)
	CountTopLevel(ctx context.Context, postID uint) (int64, error)
}

// commentRepository implements CommentRepository
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a comment and bumps the post's comments_count, plus the
// parent's replies_count when the comment is a reply. Replying to a reply is
// rejected so the tree stays two levels deep.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").Take(&post, comment.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("post", comment.PostID)
			}
			return err
		}

		if comment.ParentCommentID != nil {
			var parent models.Comment
			if err := tx.Take(&parent, *comment.ParentCommentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NewInvalidParentError("parent comment does not exist")
				}
				return err
			}
			if parent.PostID != comment.PostID {
				return models.NewInvalidParentError("parent comment belongs to a different post")
			}
			if parent.IsReply() {
				return models.NewInvalidParentError("cannot reply to a reply")
			}
		}

		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		if err := incCounter(tx, models.SubjectPost, comment.PostID, "comments_count", 1); err != nil {
			return err
		}
		if comment.ParentCommentID != nil {
			return incCounter(tx, models.SubjectComment, *comment.ParentCommentID, "replies_count", 1)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("comment", id)
		}
		return nil, err
	}
	return &comment, nil
}

// Update persists the editable columns only; counters never ride this write.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).Model(comment).
		Select("content", "edited_at").
		Updates(comment)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("comment", comment.ID)
	}
	return nil
}

// DeleteCascade removes a comment in one transaction. Deleting a top-level
// comment takes its replies and all their reactions with it; the post's
// comments_count drops by one plus the number of live replies.
func (r *commentRepository) DeleteCascade(ctx context.Context, id uint) error {
	var postID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Take(&comment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("comment", id)
			}
			return err
		}
		postID = comment.PostID

		removed := 1
		if !comment.IsReply() {
			var replyIDs []uint
			if err := tx.Model(&models.Comment{}).
				Where("parent_comment_id = ?", id).
				Pluck("id", &replyIDs).Error; err != nil {
				return err
			}
			if len(replyIDs) > 0 {
				if err := tx.Where("subject_type = ? AND subject_id IN ?", models.SubjectComment, replyIDs).
					Delete(&models.Reaction{}).Error; err != nil {
					return err
				}
				res := tx.Where("parent_comment_id = ?", id).Delete(&models.Comment{})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected != int64(len(replyIDs)) {
					return models.NewConsistencyViolationError("reply cascade removed an unexpected number of rows")
				}
				removed += len(replyIDs)
			}
		}

		if err := tx.Where("subject_type = ? AND subject_id = ?", models.SubjectComment, id).
			Delete(&models.Reaction{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewConsistencyViolationError("comment vanished mid-delete")
		}

		if err := decCounter(tx, models.SubjectPost, comment.PostID, "comments_count", removed); err != nil {
			return err
		}
		if comment.IsReply() {
			return decCounter(tx, models.SubjectComment, *comment.ParentCommentID, "replies_count", 1)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

// ListByPost returns a page of top-level comments oldest first, each with its
// replies attached oldest first. Pagination applies to top-level comments
// only; replies always come along whole.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	var topLevel []*models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND parent_comment_id IS NULL", postID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&topLevel).Error
	if err != nil {
		return nil, err
	}
	if len(topLevel) == 0 {
		return topLevel, nil
	}

	parentIDs := make([]uint, len(topLevel))
	byID := make(map[uint]*models.Comment, len(topLevel))
	for i, c := range topLevel {
		parentIDs[i] = c.ID
		byID[c.ID] = c
	}

	var replies []*models.Comment
	err = r.db.WithContext(ctx).
		Where("parent_comment_id IN ?", parentIDs).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	for _, reply := range replies {
		parent := byID[*reply.ParentCommentID]
		parent.Replies = append(parent.Replies, reply)
	}
	return topLevel, nil
}

func (r *commentRepository) CountTopLevel(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND parent_comment_id IS NULL", postID).
		Count(&count).Error
	return count, err
}
