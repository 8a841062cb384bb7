package repository

import (
	"context"

	"github.com/shinyyama/rewards-backend/internal/model"
	"gorm.io/gorm"
)

// LedgerRepository applies balance changes together with the row that
// justifies them, inside one transaction.
type LedgerRepository interface {
	Credit(ctx context.Context, a *model.Activity) error
	DebitForWithdrawal(ctx context.Context, w *model.Withdrawal) error
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// Credit adds a.PointsEarned to the user's balance and appends a.
func (r *ledgerRepository) Credit(ctx context.Context, a *model.Activity) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ?", a.UserID).
			Update("points", gorm.Expr("points + ?", a.PointsEarned))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return NewActivityRepository(tx).Create(ctx, a)
	})
}

// DebitForWithdrawal subtracts w.AmountPoints only while the balance covers it,
// then inserts w. gorm.ErrRecordNotFound means the balance was too low.
func (r *ledgerRepository) DebitForWithdrawal(ctx context.Context, w *model.Withdrawal) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ? AND points >= ?", w.UserID, w.AmountPoints).
			Update("points", gorm.Expr("points - ?", w.AmountPoints))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(w).Error
	})
}
