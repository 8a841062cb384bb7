package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	appmw "github.com/shinyyama/rewards-backend/internal/middleware"
	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/repository"
	"github.com/shinyyama/rewards-backend/internal/service"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type NotificationResponse struct {
	ID           uint64  `json:"id"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	Body         string  `json:"body"`
	WithdrawalID *uint64 `json:"withdrawalId,omitempty"`
	AmountPoints int64   `json:"amountPoints"`
	Amount       string  `json:"amount,omitempty"`
	Currency     string  `json:"currency,omitempty"`
	Read         bool    `json:"read"`
	CreatedAt    string  `json:"createdAt"`
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:           n.ID,
		Type:         n.Type,
		Title:        n.Title,
		Body:         n.Body,
		WithdrawalID: n.WithdrawalID,
		AmountPoints: n.AmountPoints,
		Amount:       n.Amount,
		Currency:     string(n.Currency),
		Read:         n.ReadAt != nil,
		CreatedAt:    n.CreatedAt.Format(time.RFC3339),
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	user := appmw.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing user"))
	}
	f := repository.NotificationFilter{UnreadOnly: c.QueryParam("unread_only") != "false"}
	if lStr := c.QueryParam("limit"); lStr != "" {
		if lParsed, err := strconv.Atoi(lStr); err == nil && lParsed > 0 {
			f.Limit = lParsed
		}
	}
	if wStr := c.QueryParam("withdrawal_id"); wStr != "" {
		wid, err := strconv.ParseUint(wStr, 10, 64)
		if err != nil {
			return badRequest(c, "invalid withdrawal_id")
		}
		f.WithdrawalID = &wid
	}
	list, unreadCount, err := h.svc.List(c.Request().Context(), user.ID, f)
	if err != nil {
		return writeError(c, err, "failed to fetch notifications")
	}
	resp := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, toNotificationResponse(n))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": resp,
		"unreadCount":   unreadCount,
	})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	user := appmw.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing user"))
	}
	if err := h.svc.MarkAllRead(c.Request().Context(), user.ID); err != nil {
		return writeError(c, err, "failed to mark read")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
