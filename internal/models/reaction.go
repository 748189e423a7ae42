package models

import "time"

// Reaction is a single user's reaction to a post or comment. The unique index
// over (subject_type, subject_id, user_id) is the ledger invariant: at most
// one live row per tuple, in every reachable state.
type Reaction struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	SubjectType SubjectType  `gorm:"not null;uniqueIndex:idx_subject_user" json:"subject_type"`
	SubjectID   uint         `gorm:"not null;uniqueIndex:idx_subject_user" json:"subject_id"`
	UserID      uint         `gorm:"not null;uniqueIndex:idx_subject_user" json:"user_id"`
	Kind        ReactionKind `gorm:"not null" json:"kind"`
	// Symbol is set iff Kind is EMOJI.
	Symbol    string    `json:"symbol,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Matches reports whether the stored reaction equals the given (kind, symbol)
// pair; a repeated identical reaction toggles off, a different one replaces.
func (r *Reaction) Matches(kind ReactionKind, symbol string) bool {
	if r.Kind != kind {
		return false
	}
	if kind == ReactionEmoji {
		return r.Symbol == symbol
	}
	return true
}

// ReactionCounts is the authoritative counter snapshot returned with every
// reaction mutation so clients can replace their optimistic guess.
type ReactionCounts struct {
	LikesCount     int `json:"likes_count"`
	ReactionsCount int `json:"reactions_count"`
}

// SymbolCount is one bucket of a per-subject reaction histogram.
type SymbolCount struct {
	Kind   ReactionKind `json:"kind"`
	Symbol string       `json:"symbol,omitempty"`
	Count  int          `json:"count"`
}
