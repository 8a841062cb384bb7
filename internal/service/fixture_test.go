package service

import (
	"context"
	"testing"
	"time"

	"github.com/shinyyama/rewards-backend/internal/auth"
	"github.com/shinyyama/rewards-backend/internal/clock"
	"github.com/shinyyama/rewards-backend/internal/dbtest"
	"github.com/shinyyama/rewards-backend/internal/metrics"
	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	clock       *clock.Fixed
	users       repository.UserRepository
	activities  repository.ActivityRepository
	withdrawals repository.WithdrawalRepository
	ledger      LedgerService
	withdraw    WithdrawalService
	notify      NotificationService
	auth        AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	clk := &clock.Fixed{T: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)}
	m := metrics.New()
	users := repository.NewUserRepository(db)
	acts := repository.NewActivityRepository(db)
	wds := repository.NewWithdrawalRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	notify := NewNotificationService(repository.NewNotificationRepository(db))
	tokens := auth.NewTokenIssuer("test-secret", time.Hour, clk)
	return &fixture{
		db:          db,
		clock:       clk,
		users:       users,
		activities:  acts,
		withdrawals: wds,
		ledger:      NewLedgerService(ledgerRepo, acts, DefaultRewardRates, clk, m),
		withdraw:    NewWithdrawalService(ledgerRepo, wds, notify, clk, m),
		notify:      notify,
		auth:        NewAuthService(users, tokens, auth.NewMemoryRevoker(clk), nil),
	}
}

func (f *fixture) user(t *testing.T, name string, points int64, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Username:     name,
		Password:     "x",
		PhoneNumber:  "98765" + name,
		DeviceID:     "device-" + name,
		Role:         role,
		Points:       points,
		ReferralCode: "RC" + name,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

// reload returns the stored row, as the auth middleware would per request.
func (f *fixture) reload(t *testing.T, u *model.User) *model.User {
	t.Helper()
	got, err := f.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	return got
}

func int64Ptr(v int64) *int64 { return &v }
