// Package models contains data structures for the application's domain models.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Visibility controls who may read a post.
type Visibility string

const (
	VisibilityPublic              Visibility = "PUBLIC"
	VisibilityFriendsOnly         Visibility = "FRIENDS_ONLY"
	VisibilityFriendsAndFollowers Visibility = "FRIENDS_AND_FOLLOWERS"
	// VisibilityScope delegates the read check to the membership rules of the
	// post's scope (channel or organization wall).
	VisibilityScope Visibility = "SCOPE"
)

// Valid reports whether v is one of the defined visibility values.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriendsOnly, VisibilityFriendsAndFollowers, VisibilityScope:
		return true
	}
	return false
}

// SubjectType identifies what a reaction is attached to.
type SubjectType string

const (
	SubjectPost    SubjectType = "POST"
	SubjectComment SubjectType = "COMMENT"
)

// Valid reports whether t is one of the defined subject types.
func (t SubjectType) Valid() bool {
	return t == SubjectPost || t == SubjectComment
}

// ReactionKind distinguishes the one-bit like from emoji reactions.
type ReactionKind string

const (
	ReactionLike  ReactionKind = "LIKE"
	ReactionEmoji ReactionKind = "EMOJI"
)

// Valid reports whether k is one of the defined reaction kinds.
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionEmoji
}

// StringSlice stores an ordered list of opaque ids as a JSON column.
type StringSlice []string

// Value implements driver.Valuer.
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringSlice) Scan(src any) error {
	if src == nil {
		*s = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", src)
	}
}

// LinkPreview is a denormalized preview of an external URL attached to a post.
type LinkPreview struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Image string `json:"image"`
}

// LinkPreviews stores an ordered list of link previews as a JSON column.
type LinkPreviews []LinkPreview

// Value implements driver.Valuer.
func (p LinkPreviews) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *LinkPreviews) Scan(src any) error {
	if src == nil {
		*p = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("cannot scan %T into LinkPreviews", src)
	}
}

// AuthorSnapshot is a display-only view of an external user, resolved at read
// time by the feed service and cached in Redis. Never persisted on rows.
type AuthorSnapshot struct {
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}
