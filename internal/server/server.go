package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shinyyama/rewards-backend/internal/auth"
	"github.com/shinyyama/rewards-backend/internal/clock"
	"github.com/shinyyama/rewards-backend/internal/handler"
	"github.com/shinyyama/rewards-backend/internal/metrics"
	appmw "github.com/shinyyama/rewards-backend/internal/middleware"
	"github.com/shinyyama/rewards-backend/internal/repository"
	"github.com/shinyyama/rewards-backend/internal/service"
	"gorm.io/gorm"
)

type Options struct {
	DB                  *gorm.DB
	JWTSecret           string
	JWTTTL              time.Duration
	Clock               clock.Clock
	Revoker             auth.Revoker         // defaults to an in-process store
	Firebase            auth.IDTokenVerifier // optional
	CORSAllowedSuffixes []string
	GitSHA              string
	BuildTime           string
}

type Server struct {
	e       *echo.Echo
	metrics *metrics.Metrics
}

func allowOrigin(suffixes []string) func(origin string) (bool, error) {
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		host := u.Hostname()
		for _, s := range suffixes {
			if s != "" && strings.HasSuffix(host, s) {
				return true, nil
			}
		}
		return false, nil
	}
}

func New(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Revoker == nil {
		opts.Revoker = auth.NewMemoryRevoker(opts.Clock)
	}
	if opts.JWTTTL <= 0 {
		opts.JWTTTL = 7 * 24 * time.Hour
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(appmw.RequestContext)
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(opts.CORSAllowedSuffixes),
	}))

	m := metrics.New()

	userRepo := repository.NewUserRepository(opts.DB)
	activityRepo := repository.NewActivityRepository(opts.DB)
	withdrawalRepo := repository.NewWithdrawalRepository(opts.DB)
	ledgerRepo := repository.NewLedgerRepository(opts.DB)
	notificationRepo := repository.NewNotificationRepository(opts.DB)

	tokens := auth.NewTokenIssuer(opts.JWTSecret, opts.JWTTTL, opts.Clock)
	authSvc := service.NewAuthService(userRepo, tokens, opts.Revoker, opts.Firebase)
	notifySvc := service.NewNotificationService(notificationRepo)
	ledgerSvc := service.NewLedgerService(ledgerRepo, activityRepo, service.DefaultRewardRates, opts.Clock, m)
	withdrawalSvc := service.NewWithdrawalService(ledgerRepo, withdrawalRepo, notifySvc, opts.Clock, m)
	userSvc := service.NewUserService(userRepo)
	activitySvc := service.NewActivityService(activityRepo)

	authMw := appmw.NewAuthMiddleware(authSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	ledgerHandler := handler.NewLedgerHandler(ledgerSvc, activitySvc)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalSvc)
	adminHandler := handler.NewAdminHandler(userSvc, withdrawalSvc)
	notificationHandler := handler.NewNotificationHandler(notifySvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    opts.GitSHA,
			"build_time": opts.BuildTime,
		})
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	api := e.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/user", authHandler.Me, authMw.RequireAuth)

	api.POST("/earn", ledgerHandler.Earn, authMw.RequireAuth)
	api.GET("/activities", ledgerHandler.ListActivities, authMw.RequireAuth)
	api.POST("/withdrawals", withdrawalHandler.Create, authMw.RequireAuth)
	api.GET("/withdrawals", withdrawalHandler.ListMine, authMw.RequireAuth)
	api.GET("/notifications", notificationHandler.List, authMw.RequireAuth)
	api.POST("/notifications/read", notificationHandler.MarkAllRead, authMw.RequireAuth)

	admin := api.Group("/admin", authMw.RequireAuth, authMw.RequireAdmin)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users/:id/block", adminHandler.BlockUser)
	admin.GET("/withdrawals", adminHandler.ListWithdrawals)
	admin.POST("/withdrawals/:id/status", adminHandler.UpdateWithdrawalStatus)

	return &Server{e: e, metrics: m}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}
