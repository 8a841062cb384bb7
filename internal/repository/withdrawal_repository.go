package repository

import (
	"context"

	"github.com/shinyyama/rewards-backend/internal/model"
	"gorm.io/gorm"
)

type WithdrawalRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.Withdrawal, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Withdrawal, error)
	ListAll(ctx context.Context) ([]model.Withdrawal, error)
	UpdateStatus(ctx context.Context, id uint64, status model.WithdrawalStatus) (*model.Withdrawal, error)
}

type withdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

func (r *withdrawalRepository) FindByID(ctx context.Context, id uint64) (*model.Withdrawal, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var w model.Withdrawal
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *withdrawalRepository) ListByUser(ctx context.Context, userID uint64) ([]model.Withdrawal, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Withdrawal
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *withdrawalRepository) ListAll(ctx context.Context) ([]model.Withdrawal, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Withdrawal
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus overwrites the status regardless of the current one.
func (r *withdrawalRepository) UpdateStatus(ctx context.Context, id uint64, status model.WithdrawalStatus) (*model.Withdrawal, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.Withdrawal{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	// RowsAffected is 0 on MySQL when the status is unchanged; the lookup
	// below is what reports a missing row.
	return r.FindByID(ctx, id)
}
