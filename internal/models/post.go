package models

import "time"

// Post represents a feed post. Counters are denormalized and maintained in
// the same transaction as the rows they summarize; they are never recomputed
// by a scan on the read path.
type Post struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	AuthorID uint  `gorm:"not null;index" json:"author_id"`
	ScopeID  *uint `gorm:"index" json:"scope_id,omitempty"`

	Content      string       `gorm:"type:text" json:"content"`
	MediaRefs    StringSlice  `gorm:"type:text" json:"media_refs"`
	LinkPreviews LinkPreviews `gorm:"type:text" json:"link_previews"`
	Visibility   Visibility   `gorm:"not null" json:"visibility"`
	IsPinned     bool         `gorm:"not null;default:false" json:"is_pinned"`

	LikesCount     int `gorm:"not null;default:0" json:"likes_count"`
	ReactionsCount int `gorm:"not null;default:0" json:"reactions_count"`
	CommentsCount  int `gorm:"not null;default:0" json:"comments_count"`

	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`

	// Read-time enrichment, never persisted.
	Author         *AuthorSnapshot `gorm:"-" json:"author,omitempty"`
	ViewerReaction *Reaction       `gorm:"-" json:"viewer_reaction,omitempty"`
}
