package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	appmw "github.com/shinyyama/rewards-backend/internal/middleware"
	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/service"
)

type AdminHandler struct {
	users       service.UserService
	withdrawals service.WithdrawalService
}

func NewAdminHandler(users service.UserService, withdrawals service.WithdrawalService) *AdminHandler {
	return &AdminHandler{users: users, withdrawals: withdrawals}
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	list, err := h.users.ListAll(c.Request().Context(), appmw.CurrentUser(c))
	if err != nil {
		return writeError(c, err, "failed to fetch users")
	}
	resp := make([]UserResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toUserResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

type blockRequest struct {
	IsBlocked *bool `json:"isBlocked"`
}

func (h *AdminHandler) BlockUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid user id")
	}
	var req blockRequest
	if err := c.Bind(&req); err != nil || req.IsBlocked == nil {
		return badRequest(c, "isBlocked is required")
	}
	u, err := h.users.SetBlocked(c.Request().Context(), appmw.CurrentUser(c), id, *req.IsBlocked)
	if err != nil {
		return writeError(c, err, "failed to update user")
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *AdminHandler) ListWithdrawals(c echo.Context) error {
	list, err := h.withdrawals.ListAll(c.Request().Context(), appmw.CurrentUser(c))
	if err != nil {
		return writeError(c, err, "failed to fetch withdrawals")
	}
	return c.JSON(http.StatusOK, toWithdrawalList(list))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) UpdateWithdrawalStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid withdrawal id")
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	w, err := h.withdrawals.TransitionStatus(c.Request().Context(), appmw.CurrentUser(c), id, model.WithdrawalStatus(req.Status))
	if err != nil {
		return writeError(c, err, "failed to update withdrawal")
	}
	return c.JSON(http.StatusOK, toWithdrawalResponse(w))
}
