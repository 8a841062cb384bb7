package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/reqctx"
	"github.com/shinyyama/rewards-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// writeError maps service errors to a status and error code. Unknown errors
// are logged and reported as internal_error with fallback as the message.
func writeError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", err.Error()))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", err.Error()))
	case errors.Is(err, service.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_request", err.Error()))
	case errors.Is(err, service.ErrDuplicateClaim):
		return c.JSON(http.StatusConflict, NewErrorResponse("duplicate_claim", err.Error()))
	case errors.Is(err, service.ErrInsufficientBalance):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("insufficient_balance", err.Error()))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", err.Error()))
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, NewErrorResponse("conflict", err.Error()))
	}
	log.Printf("%s%s: %v", reqctx.Prefix(c.Request().Context()), fallback, err)
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", fallback))
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_request", message))
}

type UserResponse struct {
	ID           uint64  `json:"id"`
	Username     string  `json:"username"`
	PhoneNumber  string  `json:"phoneNumber"`
	DeviceID     string  `json:"deviceId"`
	Role         string  `json:"role"`
	Points       int64   `json:"points"`
	IsBlocked    bool    `json:"isBlocked"`
	ReferralCode string  `json:"referralCode"`
	ReferredBy   *string `json:"referredBy,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		PhoneNumber:  u.PhoneNumber,
		DeviceID:     u.DeviceID,
		Role:         string(u.Role),
		Points:       u.Points,
		IsBlocked:    u.IsBlocked,
		ReferralCode: u.ReferralCode,
		ReferredBy:   u.ReferredBy,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
	}
}

type ActivityResponse struct {
	ID           uint64 `json:"id"`
	UserID       uint64 `json:"userId"`
	Type         string `json:"type"`
	PointsEarned int64  `json:"pointsEarned"`
	CreatedAt    string `json:"createdAt"`
}

func toActivityResponse(a *model.Activity) ActivityResponse {
	return ActivityResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		Type:         string(a.Type),
		PointsEarned: a.PointsEarned,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
}

type WithdrawalResponse struct {
	ID           uint64 `json:"id"`
	UserID       uint64 `json:"userId"`
	AmountPoints int64  `json:"amountPoints"`
	AmountUSD    string `json:"amountUsd"`
	AmountINR    string `json:"amountInr"`
	Currency     string `json:"currency"`
	Method       string `json:"method"`
	Details      string `json:"details"`
	Status       string `json:"status"`
	CreatedAt    string `json:"createdAt"`
}

func toWithdrawalResponse(w *model.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:           w.ID,
		UserID:       w.UserID,
		AmountPoints: w.AmountPoints,
		AmountUSD:    w.AmountUSD,
		AmountINR:    w.AmountINR,
		Currency:     string(w.Currency),
		Method:       string(w.Method),
		Details:      w.Details,
		Status:       string(w.Status),
		CreatedAt:    w.CreatedAt.Format(time.RFC3339),
	}
}

func toWithdrawalList(list []model.Withdrawal) []WithdrawalResponse {
	resp := make([]WithdrawalResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toWithdrawalResponse(&list[i]))
	}
	return resp
}
