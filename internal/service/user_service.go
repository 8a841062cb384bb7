package service

import (
	"context"
	"errors"
	"log"

	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/reqctx"
	"github.com/shinyyama/rewards-backend/internal/repository"
	"gorm.io/gorm"
)

// UserService holds the admin-side user operations.
type UserService interface {
	ListAll(ctx context.Context, admin *model.User) ([]model.User, error)
	SetBlocked(ctx context.Context, admin *model.User, userID uint64, blocked bool) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) ListAll(ctx context.Context, admin *model.User) ([]model.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func (s *userService) SetBlocked(ctx context.Context, admin *model.User, userID uint64, blocked bool) (*model.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	u, err := s.repo.SetBlocked(ctx, userID, blocked)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	log.Printf("%suser %d is_blocked=%t by admin %d", reqctx.Prefix(ctx), u.ID, blocked, admin.ID)
	return u, nil
}
