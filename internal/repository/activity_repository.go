package repository

import (
	"context"

	"github.com/shinyyama/rewards-backend/internal/model"
	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(ctx context.Context, a *model.Activity) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, a *model.Activity) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(a).Error
}

// ListByUser returns the user's activity log, newest first.
func (r *activityRepository) ListByUser(ctx context.Context, userID uint64) ([]model.Activity, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Activity
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
