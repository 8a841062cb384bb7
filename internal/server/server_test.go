package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shinyyama/rewards-backend/internal/auth"
	"github.com/shinyyama/rewards-backend/internal/clock"
	"github.com/shinyyama/rewards-backend/internal/dbtest"
	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	srv   *Server
	db    *gorm.DB
	clock *clock.Fixed
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t)
	clk := &clock.Fixed{T: time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)}
	srv := New(Options{
		DB:        db,
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
		Clock:     clk,
		GitSHA:    "abc123",
	})
	return &testEnv{srv: srv, db: db, clock: clk}
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, req)
	return w
}

type session struct {
	User struct {
		ID     uint64 `json:"id"`
		Points int64  `json:"points"`
		Role   string `json:"role"`
	} `json:"user"`
	Token string `json:"token"`
}

func (e *testEnv) register(t *testing.T, name string) session {
	t.Helper()
	w := e.do(http.MethodPost, "/api/register", "", map[string]string{
		"username":    name,
		"password":    "secret123",
		"phoneNumber": "98000" + fmt.Sprintf("%05d", len(name)) + name,
		"deviceId":    "device-" + name,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var s session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	require.NotEmpty(t, s.Token)
	return s
}

func (e *testEnv) admin(t *testing.T) session {
	t.Helper()
	hash, err := auth.HashPassword("adminpass")
	require.NoError(t, err)
	u := &model.User{
		Username:     "root",
		Password:     hash,
		PhoneNumber:  "9111111111",
		DeviceID:     "admin-device",
		Role:         model.RoleAdmin,
		ReferralCode: "ADMIN1",
	}
	require.NoError(t, repository.NewUserRepository(e.db).Create(context.Background(), u))
	w := e.do(http.MethodPost, "/api/login", "", map[string]string{"username": "root", "password": "adminpass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var s session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	return s
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func (e *testEnv) points(t *testing.T, token string) int64 {
	t.Helper()
	w := e.do(http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var u struct {
		Points int64 `json:"points"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	return u.Points
}

func TestHealthz(t *testing.T) {
	env := setup(t)
	w := env.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "abc123")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAnonymousIsRejected(t *testing.T) {
	env := setup(t)
	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/api/earn"},
		{http.MethodGet, "/api/activities"},
		{http.MethodPost, "/api/withdrawals"},
		{http.MethodGet, "/api/withdrawals"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodPost, "/api/admin/withdrawals/1/status"},
	} {
		w := env.do(r.method, r.path, "", map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)
	}
	w := env.do(http.MethodGet, "/api/user", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEarnAndWithdrawFlow(t *testing.T) {
	env := setup(t)
	s := env.register(t, "alice")
	assert.Zero(t, s.User.Points)

	w := env.do(http.MethodPost, "/api/earn", s.Token, map[string]string{"type": "ad_watch"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var earn struct {
		PointsAdded int64  `json:"pointsAdded"`
		NewBalance  int64  `json:"newBalance"`
		Message     string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &earn))
	assert.EqualValues(t, 20, earn.PointsAdded)
	assert.EqualValues(t, 20, earn.NewBalance)
	assert.Equal(t, "Earned 20 points!", earn.Message)

	w = env.do(http.MethodPost, "/api/withdrawals", s.Token, map[string]interface{}{
		"amountPoints": 100, "method": "paypal", "details": `{"account":"a@example.com"}`,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "insufficient_balance", errorCode(t, w))
	assert.EqualValues(t, 20, env.points(t, s.Token))

	w = env.do(http.MethodPost, "/api/earn", s.Token, map[string]interface{}{"type": "game_tap", "score": 25})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &earn))
	assert.EqualValues(t, 20, earn.PointsAdded)

	w = env.do(http.MethodPost, "/api/earn", s.Token, map[string]interface{}{"type": "game_memory", "score": 0})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &earn))
	assert.EqualValues(t, 5, earn.PointsAdded)
	assert.EqualValues(t, 45, earn.NewBalance)

	w = env.do(http.MethodPost, "/api/earn", s.Token, map[string]string{"type": "lottery"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", errorCode(t, w))

	w = env.do(http.MethodGet, "/api/activities", s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var acts []struct {
		Type         string `json:"type"`
		PointsEarned int64  `json:"pointsEarned"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &acts))
	require.Len(t, acts, 3)
	var sum int64
	for _, a := range acts {
		sum += a.PointsEarned
	}
	assert.Equal(t, env.points(t, s.Token), sum)
}

func TestDailyLoginDuplicate(t *testing.T) {
	env := setup(t)
	s := env.register(t, "bob")

	w := env.do(http.MethodPost, "/api/earn", s.Token, map[string]string{"type": "daily_login"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/api/earn", s.Token, map[string]string{"type": "daily_login"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_claim", errorCode(t, w))
	assert.EqualValues(t, 20, env.points(t, s.Token))
}

func TestAdminWorkflow(t *testing.T) {
	env := setup(t)
	adm := env.admin(t)
	s := env.register(t, "carol")
	require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", s.User.ID).Update("points", 300).Error)

	// regular users cannot reach admin routes
	w := env.do(http.MethodGet, "/api/admin/users", s.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPost, "/api/withdrawals", s.Token, map[string]interface{}{
		"amountPoints": 300, "method": "upi", "details": "carol@okaxis", "currency": "INR",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var wd struct {
		ID        uint64 `json:"id"`
		Status    string `json:"status"`
		Currency  string `json:"currency"`
		AmountUSD string `json:"amountUsd"`
		AmountINR string `json:"amountInr"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wd))
	assert.Equal(t, "pending", wd.Status)
	assert.Equal(t, "INR", wd.Currency)
	assert.Equal(t, "0.45", wd.AmountUSD)
	assert.Equal(t, "37.35", wd.AmountINR)
	assert.Zero(t, env.points(t, s.Token))

	w = env.do(http.MethodGet, "/api/admin/withdrawals", adm.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)

	path := fmt.Sprintf("/api/admin/withdrawals/%d/status", wd.ID)
	w = env.do(http.MethodPost, path, adm.Token, map[string]string{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, path, adm.Token, map[string]string{"status": "rejected"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wd))
	assert.Equal(t, "rejected", wd.Status)
	// no refund on reject
	assert.Zero(t, env.points(t, s.Token))

	w = env.do(http.MethodPost, "/api/admin/withdrawals/9999/status", adm.Token, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/notifications", s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "withdrawal_rejected")
	assert.Contains(t, w.Body.String(), `"unreadCount":1`)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/notifications?withdrawal_id=%d", wd.ID), s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notes struct {
		Notifications []struct {
			WithdrawalID uint64 `json:"withdrawalId"`
			AmountPoints int64  `json:"amountPoints"`
			Amount       string `json:"amount"`
			Currency     string `json:"currency"`
		} `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notes))
	require.Len(t, notes.Notifications, 1)
	assert.Equal(t, wd.ID, notes.Notifications[0].WithdrawalID)
	assert.EqualValues(t, 300, notes.Notifications[0].AmountPoints)
	assert.Equal(t, "37.35", notes.Notifications[0].Amount)
	assert.Equal(t, "INR", notes.Notifications[0].Currency)

	w = env.do(http.MethodGet, "/api/notifications?withdrawal_id=9999", s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"notifications":[]`)

	w = env.do(http.MethodGet, "/api/notifications?withdrawal_id=abc", s.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// block: earn is refused, listing still works
	w = env.do(http.MethodPost, fmt.Sprintf("/api/admin/users/%d/block", s.User.ID), adm.Token, map[string]bool{"isBlocked": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isBlocked":true`)

	w = env.do(http.MethodPost, "/api/earn", s.Token, map[string]string{"type": "ad_watch"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/withdrawals", s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"rejected"`)

	w = env.do(http.MethodPost, fmt.Sprintf("/api/admin/users/%d/block", s.User.ID), adm.Token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/admin/users", adm.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, strings.Count(w.Body.String(), `"username"`))
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setup(t)
	s := env.register(t, "dave")

	w := env.do(http.MethodPost, "/api/logout", s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/user", s.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := setup(t)
	s := env.register(t, "erin")
	env.do(http.MethodPost, "/api/earn", s.Token, map[string]string{"type": "ad_watch"})

	w := env.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `rewards_ledger_earn_events_total{result="ok",type="ad_watch"} 1`)
}

func TestAllowOrigin(t *testing.T) {
	allow := allowOrigin([]string{"vercel.app"})
	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:5173", true},
		{"https://rewards.vercel.app", true},
		{"https://evil.example.com", false},
		{"ftp://rewards.vercel.app", false},
	}
	for _, tt := range tests {
		got, _ := allow(tt.origin)
		if got != tt.want {
			t.Fatalf("origin=%s got=%v want=%v", tt.origin, got, tt.want)
		}
	}
}
