package repository

import (
	"context"
	"errors"
	"strings"

	"pulse/internal/cache"
	"pulse/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository defines the interface for reaction ledger operations.
// Set and Clear run the ledger write and the counter update in one
// transaction; the counts they return are read inside that transaction.
type ReactionRepository interface {
	Set(ctx context.Context, subjectType models.SubjectType, subjectID, userID uint, kind models.ReactionKind, symbol string) (bool, models.ReactionCounts, error)
	Clear(ctx context.Context, subjectType models.SubjectType, subjectID, userID uint) (bool, models.ReactionCounts, error)
	GetForViewer(ctx context.Context, subjectType models.SubjectType, subjectID, userID uint) (*models.Reaction, error)
	ListForViewer(ctx context.Context, subjectType models.SubjectType, subjectIDs []uint, userID uint) (map[uint]*models.Reaction, error)
	CountsBySymbol(ctx context.Context, subjectType models.SubjectType, subjectID uint) ([]models.SymbolCount, error)
}

// reactionRepository implements ReactionRepository
type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func subjectExists(tx *gorm.DB, subjectType models.SubjectType, subjectID uint) error {
	var n int64
	err := tx.Model(subjectModel(subjectType)).
		Where("id = ?", subjectID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return models.NewNotFoundError(strings.ToLower(string(subjectType)), subjectID)
	}
	return nil
}

func readCounts(tx *gorm.DB, subjectType models.SubjectType, subjectID uint) (models.ReactionCounts, error) {
	var counts models.ReactionCounts
	err := tx.Model(subjectModel(subjectType)).
		Select("likes_count", "reactions_count").
		Where("id = ?", subjectID).
		Scan(&counts).Error
	return counts, err
}

// transitionReaction applies the toggle/replace transition against an
// existing ledger row: an identical reaction toggles off, a different one
// replaces the row in place and moves the counters when the column changes.
func transitionReaction(tx *gorm.DB, existing *models.Reaction, subjectType models.SubjectType, subjectID uint, kind models.ReactionKind, symbol string) (bool, error) {
	if existing.Matches(kind, symbol) {
		res := tx.Delete(&models.Reaction{}, existing.ID)
		if res.Error != nil {
			return false, res.Error
		}
		if res.RowsAffected == 0 {
			return false, models.NewConsistencyViolationError("reaction row vanished mid-toggle")
		}
		return false, decCounter(tx, subjectType, subjectID, counterColumn(existing.Kind), 1)
	}

	res := tx.Model(&models.Reaction{}).
		Where("id = ?", existing.ID).
		Updates(map[string]any{"kind": kind, "symbol": symbol})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, models.NewConsistencyViolationError("reaction row vanished mid-replace")
	}
	oldColumn, newColumn := counterColumn(existing.Kind), counterColumn(kind)
	if oldColumn != newColumn {
		if err := decCounter(tx, subjectType, subjectID, oldColumn, 1); err != nil {
			return true, err
		}
		if err := incCounter(tx, subjectType, subjectID, newColumn, 1); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Set applies a reaction. A repeated identical reaction toggles it off, a
// different one replaces the stored row in place, so the unique ledger index
// never sees two rows for the same (subject, user) tuple.
func (r *reactionRepository) Set(ctx context.Context, subjectType models.SubjectType, subjectID, userID uint, kind models.ReactionKind, symbol string) (bool, models.ReactionCounts, error) {
	var (
		applied bool
		counts  models.ReactionCounts
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := subjectExists(tx, subjectType, subjectID); err != nil {
			return err
		}

		var existing models.Reaction
		err := tx.Where("subject_type = ? AND subject_id = ? AND user_id = ?", subjectType, subjectID, userID).
			Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.Reaction{
				SubjectType: subjectType,
				SubjectID:   subjectID,
				UserID:      userID,
				Kind:        kind,
				Symbol:      symbol,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				applied = true
				if err := incCounter(tx, subjectType, subjectID, counterColumn(kind), 1); err != nil {
					return err
				}
				break
			}
			// Lost a same-user race: the winner committed between the read
			// and the insert. Its row is visible now, so transition from it
			// exactly as if it had been read first.
			if err := tx.Where("subject_type = ? AND subject_id = ? AND user_id = ?", subjectType, subjectID, userID).
				Take(&existing).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NewConsistencyViolationError("reaction insert conflicted with no visible row")
				}
				return err
			}
			applied, err = transitionReaction(tx, &existing, subjectType, subjectID, kind, symbol)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			applied, err = transitionReaction(tx, &existing, subjectType, subjectID, kind, symbol)
			if err != nil {
				return err
			}
		}

		var err2 error
		counts, err2 = readCounts(tx, subjectType, subjectID)
		return err2
	})
	if err != nil {
		return false, models.ReactionCounts{}, err
	}
	if subjectType == models.SubjectPost {
		cache.InvalidatePost(ctx, subjectID)
	}
	return applied, counts, nil
}

// Clear removes the viewer's reaction if present. Clearing a subject the
// viewer never reacted to is a no-op, not an error; the first return value
// reports whether a row actually went away.
func (r *reactionRepository) Clear(ctx context.Context, subjectType models.SubjectType, subjectID, userID uint) (bool, models.ReactionCounts, error) {
	var (
		removed bool
		counts  models.ReactionCounts
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := subjectExists(tx, subjectType, subjectID); err != nil {
			return err
		}

		var existing models.Reaction
		err := tx.Where("subject_type = ? AND subject_id = ? AND user_id = ?", subjectType, subjectID, userID).
			Take(&existing).Error
		if err == nil {
			res := tx.Delete(&models.Reaction{}, existing.ID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				removed = true
				if err := decCounter(tx, subjectType, subjectID, counterColumn(existing.Kind), 1); err != nil {
					return err
				}
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var err2 error
		counts, err2 = readCounts(tx, subjectType, subjectID)
		return err2
	})
	if err != nil {
		return false, models.ReactionCounts{}, err
	}
	if subjectType == models.SubjectPost {
		cache.InvalidatePost(ctx, subjectID)
	}
	return removed, counts, nil
}

// GetForViewer returns the viewer's reaction on a subject, or nil when none.
func (r *reactionRepository) GetForViewer(ctx context.Context, subjectType models.SubjectType, subjectID, userID uint) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ? AND user_id = ?", subjectType, subjectID, userID).
		Take(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// ListForViewer fetches the viewer's reactions over many subjects in one
// query, keyed by subject id. Used to decorate feed pages.
func (r *reactionRepository) ListForViewer(ctx context.Context, subjectType models.SubjectType, subjectIDs []uint, userID uint) (map[uint]*models.Reaction, error) {
	result := make(map[uint]*models.Reaction, len(subjectIDs))
	if len(subjectIDs) == 0 {
		return result, nil
	}
	var reactions []*models.Reaction
	err := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id IN ? AND user_id = ?", subjectType, subjectIDs, userID).
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}
	for _, reaction := range reactions {
		result[reaction.SubjectID] = reaction
	}
	return result, nil
}

// CountsBySymbol returns the per-(kind, symbol) histogram for a subject,
// biggest buckets first.
func (r *reactionRepository) CountsBySymbol(ctx context.Context, subjectType models.SubjectType, subjectID uint) ([]models.SymbolCount, error) {
	var buckets []models.SymbolCount
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Select("kind", "symbol", "COUNT(*) AS count").
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Group("kind").Group("symbol").
		Order("count DESC").
		Scan(&buckets).Error
	return buckets, err
}
