// Package repository provides data access layer implementations for the application.
package repository

import (
	"fmt"

	"pulse/internal/models"

	"gorm.io/gorm"
)

// counterColumn picks the denormalized counter a reaction kind feeds.
func counterColumn(kind models.ReactionKind) string {
	if kind == models.ReactionLike {
		return "likes_count"
	}
	return "reactions_count"
}

func subjectModel(subjectType models.SubjectType) any {
	if subjectType == models.SubjectPost {
		return &models.Post{}
	}
	return &models.Comment{}
}

// incCounter atomically adds n to a counter column inside the caller's
// transaction. The subject row must exist; a zero-row update means the row
// vanished mid-transaction and aborts with a consistency violation.
func incCounter(tx *gorm.DB, subjectType models.SubjectType, subjectID uint, column string, n int) error {
	res := tx.Model(subjectModel(subjectType)).
		Where("id = ?", subjectID).
		UpdateColumn(column, gorm.Expr(column+" + ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewConsistencyViolationError(
			fmt.Sprintf("counter target %s/%d missing for %s increment", subjectType, subjectID, column))
	}
	return nil
}

// decCounter atomically subtracts n from a counter column inside the caller's
// transaction. The guard clause refuses to take the counter below zero; a
// zero-row update is a consistency violation, never a silent clamp.
func decCounter(tx *gorm.DB, subjectType models.SubjectType, subjectID uint, column string, n int) error {
	res := tx.Model(subjectModel(subjectType)).
		Where(fmt.Sprintf("id = ? AND %s >= ?", column), subjectID, n).
		UpdateColumn(column, gorm.Expr(column+" - ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewConsistencyViolationError(
			fmt.Sprintf("%s decrement by %d on %s/%d would go negative or target is missing", column, n, subjectType, subjectID))
	}
	return nil
}
