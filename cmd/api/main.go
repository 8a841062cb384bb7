package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/shinyyama/rewards-backend/internal/auth"
	"github.com/shinyyama/rewards-backend/internal/clock"
	"github.com/shinyyama/rewards-backend/internal/config"
	"github.com/shinyyama/rewards-backend/internal/db"
	"github.com/shinyyama/rewards-backend/internal/server"
	_ "go.uber.org/automaxprocs"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE %q: %v", cfg.Timezone, err)
	}
	clk := clock.RealClock{Location: loc}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := server.Options{
		DB:                  conn,
		JWTSecret:           cfg.JWTSecret,
		JWTTTL:              cfg.JWTTTL,
		Clock:               clk,
		CORSAllowedSuffixes: cfg.CORSAllowedSuffixes,
		GitSHA:              cfg.GitSHA,
		BuildTime:           cfg.BuildTime,
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("redis ping error: %v", err)
		}
		opts.Revoker = auth.NewRedisRevoker(rdb, clk)
		log.Printf("token revocation backed by redis at %s", cfg.RedisAddr)
	} else {
		log.Printf("REDIS_ADDR not set; token revocation is in-process only")
	}

	if cfg.FirebaseProjectID != "" {
		verifier, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID)
		if err != nil {
			log.Fatalf("firebase init error: %v", err)
		}
		opts.Firebase = verifier
	}

	srv := server.New(opts)
	addr := ":" + cfg.Port

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting server on %s (tz=%s)", addr, loc)
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	case <-ctx.Done():
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}
