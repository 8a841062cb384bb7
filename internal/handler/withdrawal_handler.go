package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	appmw "github.com/shinyyama/rewards-backend/internal/middleware"
	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/service"
)

type WithdrawalHandler struct {
	svc service.WithdrawalService
}

func NewWithdrawalHandler(svc service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{svc: svc}
}

type createWithdrawalRequest struct {
	AmountPoints int64  `json:"amountPoints"`
	Method       string `json:"method"`
	Details      string `json:"details"`
	Currency     string `json:"currency"`
}

func (h *WithdrawalHandler) Create(c echo.Context) error {
	user := appmw.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing user"))
	}
	var req createWithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	w, err := h.svc.Request(c.Request().Context(), user, service.WithdrawalRequest{
		AmountPoints: req.AmountPoints,
		Method:       model.WithdrawalMethod(req.Method),
		Details:      req.Details,
		Currency:     model.Currency(req.Currency),
	})
	if err != nil {
		return writeError(c, err, "failed to create withdrawal")
	}
	return c.JSON(http.StatusCreated, toWithdrawalResponse(w))
}

func (h *WithdrawalHandler) ListMine(c echo.Context) error {
	list, err := h.svc.ListMine(c.Request().Context(), appmw.CurrentUser(c))
	if err != nil {
		return writeError(c, err, "failed to fetch withdrawals")
	}
	return c.JSON(http.StatusOK, toWithdrawalList(list))
}
