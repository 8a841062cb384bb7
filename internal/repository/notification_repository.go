package repository

import (
	"context"

	"github.com/shinyyama/rewards-backend/internal/model"
	"gorm.io/gorm"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 50
)

// NotificationFilter narrows a user's notification list. A nil WithdrawalID
// means every withdrawal.
type NotificationFilter struct {
	UnreadOnly   bool
	WithdrawalID *uint64
	Limit        int
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uint64, f NotificationFilter) ([]model.Notification, error)
	MarkAllRead(ctx context.Context, userID uint64) error
	CountUnread(ctx context.Context, userID uint64) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint64, f NotificationFilter) ([]model.Notification, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	limit := f.Limit
	if limit <= 0 || limit > maxNotificationLimit {
		limit = defaultNotificationLimit
	}
	q := r.unread(ctx, userID, f.UnreadOnly)
	if f.WithdrawalID != nil {
		q = q.Where("withdrawal_id = ?", *f.WithdrawalID)
	}
	var list []model.Notification
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.unread(ctx, userID, true).Update("read_at", r.db.NowFunc()).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var cnt int64
	if err := r.unread(ctx, userID, true).Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *notificationRepository) unread(ctx context.Context, userID uint64, only bool) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if only {
		q = q.Where("read_at IS NULL")
	}
	return q
}
