package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shinyyama/rewards-backend/internal/clock"
	"github.com/shinyyama/rewards-backend/internal/metrics"
	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/reqctx"
	"github.com/shinyyama/rewards-backend/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MinWithdrawalPoints = 100
	USDToINR            = 83
)

type WithdrawalRequest struct {
	AmountPoints int64
	Method       model.WithdrawalMethod
	Details      string
	Currency     model.Currency
}

type WithdrawalService interface {
	Request(ctx context.Context, user *model.User, req WithdrawalRequest) (*model.Withdrawal, error)
	ListMine(ctx context.Context, user *model.User) ([]model.Withdrawal, error)
	ListAll(ctx context.Context, admin *model.User) ([]model.Withdrawal, error)
	TransitionStatus(ctx context.Context, admin *model.User, id uint64, status model.WithdrawalStatus) (*model.Withdrawal, error)
}

type withdrawalService struct {
	ledgerRepo     repository.LedgerRepository
	withdrawalRepo repository.WithdrawalRepository
	notify         NotificationService
	clock          clock.Clock
	metrics        *metrics.Metrics
}

func NewWithdrawalService(ledgerRepo repository.LedgerRepository, withdrawalRepo repository.WithdrawalRepository, notify NotificationService, clk clock.Clock, m *metrics.Metrics) WithdrawalService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &withdrawalService{ledgerRepo: ledgerRepo, withdrawalRepo: withdrawalRepo, notify: notify, clock: clk, metrics: m}
}

var usdPer1000Points = decimal.RequireFromString("1.5")

// ConvertPoints returns the USD and INR amounts as two-decimal strings.
// 1000 points are worth $1.50. Half cents round up; INR is taken from the
// unrounded USD value.
func ConvertPoints(points int64) (usd, inr string) {
	u := decimal.NewFromInt(points).Mul(usdPer1000Points).Div(decimal.NewFromInt(1000))
	return u.StringFixed(2), u.Mul(decimal.NewFromInt(USDToINR)).StringFixed(2)
}

// currencyFor picks the payout currency. PayPal pays out in USD; UPI and bank
// transfers in INR.
func currencyFor(c model.Currency, m model.WithdrawalMethod) model.Currency {
	if c != "" {
		return c
	}
	if m == model.WithdrawalMethodPaypal {
		return model.CurrencyUSD
	}
	return model.CurrencyINR
}

func (r WithdrawalRequest) validate() error {
	if r.AmountPoints < MinWithdrawalPoints {
		return fmt.Errorf("%w: minimum withdrawal is %d points", ErrInvalidRequest, MinWithdrawalPoints)
	}
	if !r.Method.Valid() {
		return fmt.Errorf("%w: unsupported method %q", ErrInvalidRequest, r.Method)
	}
	if strings.TrimSpace(r.Details) == "" {
		return fmt.Errorf("%w: details are required", ErrInvalidRequest)
	}
	if r.Currency != "" && !r.Currency.Valid() {
		return fmt.Errorf("%w: unsupported currency %q", ErrInvalidRequest, r.Currency)
	}
	return nil
}

func (s *withdrawalService) Request(ctx context.Context, user *model.User, req WithdrawalRequest) (*model.Withdrawal, error) {
	w, err := s.request(ctx, user, req)
	if err != nil {
		s.metrics.ObserveWithdrawalRequest(string(req.Method), resultLabel(err))
		return nil, err
	}
	s.metrics.ObserveWithdrawalRequest(string(req.Method), "ok")
	return w, nil
}

func (s *withdrawalService) request(ctx context.Context, user *model.User, req WithdrawalRequest) (*model.Withdrawal, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if user.Points < req.AmountPoints {
		return nil, ErrInsufficientBalance
	}

	usd, inr := ConvertPoints(req.AmountPoints)
	w := &model.Withdrawal{
		UserID:       user.ID,
		AmountPoints: req.AmountPoints,
		AmountUSD:    usd,
		AmountINR:    inr,
		Currency:     currencyFor(req.Currency, req.Method),
		Method:       req.Method,
		Details:      req.Details,
		Status:       model.WithdrawalStatusPending,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.ledgerRepo.DebitForWithdrawal(ctx, w); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// balance moved between the check above and the debit
			return nil, ErrInsufficientBalance
		}
		log.Printf("%swithdrawal request failed: %v", reqctx.Prefix(ctx), err)
		return nil, err
	}
	log.Printf("%swithdrawal %d requested: %d points via %s", reqctx.Prefix(ctx), w.ID, w.AmountPoints, w.Method)
	return w, nil
}

func (s *withdrawalService) ListMine(ctx context.Context, user *model.User) ([]model.Withdrawal, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	return s.withdrawalRepo.ListByUser(ctx, user.ID)
}

func (s *withdrawalService) ListAll(ctx context.Context, admin *model.User) ([]model.Withdrawal, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.withdrawalRepo.ListAll(ctx)
}

// TransitionStatus sets the status without looking at the current one and
// without touching the balance. Rejected requests are not refunded.
func (s *withdrawalService) TransitionStatus(ctx context.Context, admin *model.User, id uint64, status model.WithdrawalStatus) (*model.Withdrawal, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if status != model.WithdrawalStatusApproved && status != model.WithdrawalStatusRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrInvalidRequest)
	}
	w, err := s.withdrawalRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.metrics.ObserveWithdrawalTransition(string(status))
	log.Printf("%swithdrawal %d set to %s by admin %d", reqctx.Prefix(ctx), w.ID, status, admin.ID)
	if s.notify != nil {
		s.notify.NotifyWithdrawal(ctx, w)
	}
	return w, nil
}

func requireAdmin(u *model.User) error {
	if u == nil {
		return ErrUnauthorized
	}
	if !u.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
