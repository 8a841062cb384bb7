package service

import (
	"context"

	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/repository"
)

type ActivityService interface {
	ListMine(ctx context.Context, user *model.User) ([]model.Activity, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) ListMine(ctx context.Context, user *model.User) ([]model.Activity, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByUser(ctx, user.ID)
}
