package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	appmw "github.com/shinyyama/rewards-backend/internal/middleware"
	"github.com/shinyyama/rewards-backend/internal/service"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PhoneNumber     string `json:"phoneNumber"`
	DeviceID        string `json:"deviceId"`
	ReferralCode    string `json:"referralCode"`
	FirebaseIDToken string `json:"firebaseIdToken"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	sess, err := h.svc.Register(c.Request().Context(), service.RegisterInput{
		Username:        req.Username,
		Password:        req.Password,
		PhoneNumber:     req.PhoneNumber,
		DeviceID:        req.DeviceID,
		ReferralCode:    req.ReferralCode,
		FirebaseIDToken: req.FirebaseIDToken,
	})
	if err != nil {
		return writeError(c, err, "failed to register")
	}
	return c.JSON(http.StatusCreated, SessionResponse{User: toUserResponse(sess.User), Token: sess.Token})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	sess, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err, "failed to log in")
	}
	return c.JSON(http.StatusOK, SessionResponse{User: toUserResponse(sess.User), Token: sess.Token})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.svc.Logout(c.Request().Context(), appmw.BearerToken(c)); err != nil {
		return writeError(c, err, "failed to log out")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	u := appmw.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing user"))
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}
