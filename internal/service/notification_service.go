package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/reqctx"
	"github.com/shinyyama/rewards-backend/internal/repository"
)

type NotificationService interface {
	NotifyWithdrawal(ctx context.Context, w *model.Withdrawal)
	List(ctx context.Context, userID uint64, f repository.NotificationFilter) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, userID uint64) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// NotifyWithdrawal is best-effort; it logs errors but does not return them to
// avoid breaking the status transition.
func (s *notificationService) NotifyWithdrawal(ctx context.Context, w *model.Withdrawal) {
	if w == nil || w.UserID == 0 {
		return
	}
	var title, verb string
	switch w.Status {
	case model.WithdrawalStatusApproved:
		title, verb = "Withdrawal approved", "approved"
	case model.WithdrawalStatusRejected:
		title, verb = "Withdrawal rejected", "rejected"
	default:
		return
	}
	amount := payoutAmount(w)
	ctx, cancel := withShortDeadline(ctx)
	defer cancel()
	id := w.ID
	n := &model.Notification{
		UserID:       w.UserID,
		Type:         "withdrawal_" + string(w.Status),
		Title:        title,
		Body:         fmt.Sprintf("Your withdrawal of %d points (%s %s) via %s was %s.", w.AmountPoints, amount, w.Currency, w.Method, verb),
		WithdrawalID: &id,
		AmountPoints: w.AmountPoints,
		Amount:       amount,
		Currency:     w.Currency,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("%snotify withdrawal %d: %v", reqctx.Prefix(ctx), w.ID, err)
	}
}

// payoutAmount is the frozen amount in the withdrawal's own currency.
func payoutAmount(w *model.Withdrawal) string {
	if w.Currency == model.CurrencyINR {
		return w.AmountINR
	}
	return w.AmountUSD
}

func (s *notificationService) List(ctx context.Context, userID uint64, f repository.NotificationFilter) ([]model.Notification, int64, error) {
	if userID == 0 {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return nil
	}
	return s.repo.MarkAllRead(ctx, userID)
}

// withShortDeadline bounds side writes so they cannot stall the main flow.
func withShortDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 2*time.Second)
}
