package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/reqctx"
	"github.com/shinyyama/rewards-backend/internal/service"
)

const (
	ContextUserKey  = "user"
	ContextTokenKey = "token"
)

type AuthMiddleware struct {
	svc service.AuthService
}

func NewAuthMiddleware(svc service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{svc: svc}
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, map[string]map[string]string{
		"error": {"code": "unauthorized", "message": message},
	})
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c echo.Context) string {
	authz := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
}

// RequireAuth loads the caller's current user row on every request.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenStr := BearerToken(c)
		if tokenStr == "" {
			return unauthorized(c, "missing bearer token")
		}
		ctx := c.Request().Context()
		user, err := m.svc.Authenticate(ctx, tokenStr)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				return unauthorized(c, "invalid_token")
			}
			log.Printf("%sauthenticate: %v", reqctx.Prefix(ctx), err)
			return c.JSON(http.StatusInternalServerError, map[string]map[string]string{
				"error": {"code": "internal_error", "message": "authentication unavailable"},
			})
		}
		c.Set(ContextUserKey, user)
		c.Set(ContextTokenKey, tokenStr)
		c.SetRequest(c.Request().WithContext(reqctx.WithUserID(ctx, user.ID)))
		return next(c)
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u := CurrentUser(c)
		if u == nil {
			return unauthorized(c, "missing user")
		}
		if !u.IsAdmin() {
			return c.JSON(http.StatusForbidden, map[string]map[string]string{
				"error": {"code": "forbidden", "message": "admin only"},
			})
		}
		return next(c)
	}
}

func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(ContextUserKey).(*model.User)
	return u
}

// RequestContext copies echo's request id into the request context for logs.
func RequestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		if rid == "" {
			rid = c.Request().Header.Get(echo.HeaderXRequestID)
		}
		if rid != "" {
			c.SetRequest(c.Request().WithContext(reqctx.WithRID(c.Request().Context(), rid)))
		}
		return next(c)
	}
}
