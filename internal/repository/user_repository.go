package repository

import (
	"context"
	"errors"

	"github.com/shinyyama/rewards-backend/internal/model"
	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByPhoneNumber(ctx context.Context, phone string) (*model.User, error)
	FindByDeviceID(ctx context.Context, deviceID string) (*model.User, error)
	FindByReferralCode(ctx context.Context, code string) (*model.User, error)
	FindByFirebaseUID(ctx context.Context, uid string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	SetBlocked(ctx context.Context, id uint64, blocked bool) (*model.User, error)
	SetRole(ctx context.Context, id uint64, role model.Role) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) findBy(ctx context.Context, column, value string) (*model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var u model.User
	if err := r.db.WithContext(ctx).
		Where(column+" = ?", value).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findBy(ctx, "username", username)
}

func (r *userRepository) FindByPhoneNumber(ctx context.Context, phone string) (*model.User, error) {
	return r.findBy(ctx, "phone_number", phone)
}

func (r *userRepository) FindByDeviceID(ctx context.Context, deviceID string) (*model.User, error) {
	return r.findBy(ctx, "device_id", deviceID)
}

func (r *userRepository) FindByReferralCode(ctx context.Context, code string) (*model.User, error) {
	return r.findBy(ctx, "referral_code", code)
}

func (r *userRepository) FindByFirebaseUID(ctx context.Context, uid string) (*model.User, error) {
	return r.findBy(ctx, "firebase_uid", uid)
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.User
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userRepository) SetBlocked(ctx context.Context, id uint64, blocked bool) (*model.User, error) {
	return r.updateColumn(ctx, id, "is_blocked", blocked)
}

func (r *userRepository) SetRole(ctx context.Context, id uint64, role model.Role) (*model.User, error) {
	return r.updateColumn(ctx, id, "role", role)
}

func (r *userRepository) updateColumn(ctx context.Context, id uint64, column string, value interface{}) (*model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update(column, value)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.FindByID(ctx, id)
}
