package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	appmw "github.com/shinyyama/rewards-backend/internal/middleware"
	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/service"
)

type LedgerHandler struct {
	ledger     service.LedgerService
	activities service.ActivityService
}

func NewLedgerHandler(ledger service.LedgerService, activities service.ActivityService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, activities: activities}
}

type earnRequest struct {
	Type  string `json:"type"`
	Score *int64 `json:"score"`
}

type EarnResponse struct {
	PointsAdded int64  `json:"pointsAdded"`
	NewBalance  int64  `json:"newBalance"`
	Message     string `json:"message"`
}

func (h *LedgerHandler) Earn(c echo.Context) error {
	user := appmw.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing user"))
	}
	var req earnRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	res, err := h.ledger.Earn(c.Request().Context(), user, model.ActivityType(req.Type), req.Score)
	if err != nil {
		return writeError(c, err, "failed to record points")
	}
	return c.JSON(http.StatusOK, EarnResponse{
		PointsAdded: res.PointsAdded,
		NewBalance:  res.NewBalance,
		Message:     fmt.Sprintf("Earned %d points!", res.PointsAdded),
	})
}

func (h *LedgerHandler) ListActivities(c echo.Context) error {
	list, err := h.activities.ListMine(c.Request().Context(), appmw.CurrentUser(c))
	if err != nil {
		return writeError(c, err, "failed to fetch activities")
	}
	resp := make([]ActivityResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toActivityResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
