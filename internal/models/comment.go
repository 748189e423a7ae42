package models

import "time"

// Comment is a comment on a post. The tree is two levels deep at most: a
// comment either has no parent (top-level) or its parent is itself top-level.
// Replying to a reply is rejected at write time, never flattened.
type Comment struct {
	ID              uint  `gorm:"primaryKey" json:"id"`
	PostID          uint  `gorm:"not null;index" json:"post_id"`
	AuthorID        uint  `gorm:"not null;index" json:"author_id"`
	ParentCommentID *uint `gorm:"index" json:"parent_comment_id,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`

	LikesCount     int `gorm:"not null;default:0" json:"likes_count"`
	ReactionsCount int `gorm:"not null;default:0" json:"reactions_count"`
	// RepliesCount is only maintained on top-level comments.
	RepliesCount int `gorm:"not null;default:0" json:"replies_count"`

	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`

	// Read-time enrichment, never persisted.
	Author         *AuthorSnapshot `gorm:"-" json:"author,omitempty"`
	ViewerReaction *Reaction       `gorm:"-" json:"viewer_reaction,omitempty"`
	Replies        []*Comment      `gorm:"-" json:"replies,omitempty"`
}

// IsReply reports whether the comment sits on the second tree level.
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}
