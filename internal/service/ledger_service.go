package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shinyyama/rewards-backend/internal/clock"
	"github.com/shinyyama/rewards-backend/internal/metrics"
	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/reqctx"
	"github.com/shinyyama/rewards-backend/internal/repository"
	"gorm.io/gorm"
)

// RewardRates is the fixed point table for earn-events.
type RewardRates struct {
	AdWatch    int64
	DailyLogin int64
	GamePlay   int64
	GameWin    int64
}

var DefaultRewardRates = RewardRates{
	AdWatch:    20,
	DailyLogin: 20,
	GamePlay:   5,
	GameWin:    15,
}

// Compute returns the delta for an event. The win bonus depends only on a
// positive client-reported score.
func (r RewardRates) Compute(t model.ActivityType, score *int64) (int64, bool) {
	switch {
	case t == model.ActivityAdWatch:
		return r.AdWatch, true
	case t == model.ActivityDailyLogin:
		return r.DailyLogin, true
	case t.IsGame():
		pts := r.GamePlay
		if score != nil && *score > 0 {
			pts += r.GameWin
		}
		return pts, true
	}
	return 0, false
}

type EarnResult struct {
	PointsAdded int64
	NewBalance  int64
	Activity    *model.Activity
}

type LedgerService interface {
	Earn(ctx context.Context, user *model.User, eventType model.ActivityType, score *int64) (*EarnResult, error)
}

type ledgerService struct {
	ledgerRepo   repository.LedgerRepository
	activityRepo repository.ActivityRepository
	rates        RewardRates
	clock        clock.Clock
	metrics      *metrics.Metrics
}

func NewLedgerService(ledgerRepo repository.LedgerRepository, activityRepo repository.ActivityRepository, rates RewardRates, clk clock.Clock, m *metrics.Metrics) LedgerService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &ledgerService{ledgerRepo: ledgerRepo, activityRepo: activityRepo, rates: rates, clock: clk, metrics: m}
}

func (s *ledgerService) Earn(ctx context.Context, user *model.User, eventType model.ActivityType, score *int64) (*EarnResult, error) {
	res, err := s.earn(ctx, user, eventType, score)
	if err != nil {
		s.metrics.ObserveEarn(string(eventType), resultLabel(err), 0)
		return nil, err
	}
	s.metrics.ObserveEarn(string(eventType), "ok", res.PointsAdded)
	return res, nil
}

func (s *ledgerService) earn(ctx context.Context, user *model.User, eventType model.ActivityType, score *int64) (*EarnResult, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	points, ok := s.rates.Compute(eventType, score)
	if !ok {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidRequest, eventType)
	}
	if user.IsBlocked {
		return nil, fmt.Errorf("%w: account blocked", ErrForbidden)
	}

	now := s.clock.Now()
	if eventType == model.ActivityDailyLogin {
		claimed, err := s.claimedToday(ctx, user.ID, now)
		if err != nil {
			return nil, err
		}
		if claimed {
			return nil, ErrDuplicateClaim
		}
	}

	a := &model.Activity{
		UserID:       user.ID,
		Type:         eventType,
		PointsEarned: points,
		CreatedAt:    now,
	}
	if err := s.ledgerRepo.Credit(ctx, a); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Printf("%searn %s failed: %v", reqctx.Prefix(ctx), eventType, err)
		return nil, err
	}
	return &EarnResult{
		PointsAdded: points,
		NewBalance:  user.Points + points,
		Activity:    a,
	}, nil
}

func (s *ledgerService) claimedToday(ctx context.Context, userID uint64, now time.Time) (bool, error) {
	acts, err := s.activityRepo.ListByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	midnight := clock.StartOfDay(now)
	for _, a := range acts {
		if a.Type == model.ActivityDailyLogin && !a.CreatedAt.Before(midnight) {
			return true, nil
		}
	}
	return false, nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrDuplicateClaim):
		return "duplicate_claim"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}
	return "error"
}
