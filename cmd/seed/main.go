package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shinyyama/rewards-backend/internal/auth"
	"github.com/shinyyama/rewards-backend/internal/config"
	"github.com/shinyyama/rewards-backend/internal/db"
	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/repository"
	"gorm.io/gorm"
)

type adminSeed struct {
	Username    string
	Password    string
	PhoneNumber string
	DeviceID    string
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	seed, err := seedFromEnv()
	if err != nil {
		return err
	}
	u, created, err := ensureAdmin(ctx, repository.NewUserRepository(gdb), seed)
	if err != nil {
		return err
	}
	if created {
		log.Printf("created admin %q (id=%d)", u.Username, u.ID)
	} else {
		log.Printf("promoted existing user %q (id=%d) to admin", u.Username, u.ID)
	}
	return nil
}

func seedFromEnv() (adminSeed, error) {
	s := adminSeed{
		Username:    strings.TrimSpace(os.Getenv("ADMIN_USERNAME")),
		Password:    os.Getenv("ADMIN_PASSWORD"),
		PhoneNumber: strings.TrimSpace(os.Getenv("ADMIN_PHONE")),
		DeviceID:    strings.TrimSpace(os.Getenv("ADMIN_DEVICE_ID")),
	}
	if s.Username == "" {
		return s, errors.New("ADMIN_USERNAME is required")
	}
	if s.DeviceID == "" {
		s.DeviceID = "admin-" + s.Username
	}
	return s, nil
}

// ensureAdmin creates the admin account, or promotes it when the username
// already exists. Running it twice is a no-op beyond the role update.
func ensureAdmin(ctx context.Context, users repository.UserRepository, s adminSeed) (*model.User, bool, error) {
	existing, err := users.FindByUsername(ctx, s.Username)
	switch {
	case err == nil:
		u, err := users.SetRole(ctx, existing.ID, model.RoleAdmin)
		if err != nil {
			return nil, false, fmt.Errorf("promote %s: %w", s.Username, err)
		}
		return u, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fmt.Errorf("lookup %s: %w", s.Username, err)
	}

	if len(s.Password) < 6 {
		return nil, false, errors.New("ADMIN_PASSWORD must be at least 6 characters")
	}
	if s.PhoneNumber == "" {
		return nil, false, errors.New("ADMIN_PHONE is required to create a new admin")
	}
	hash, err := auth.HashPassword(s.Password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Username:     s.Username,
		Password:     hash,
		PhoneNumber:  s.PhoneNumber,
		DeviceID:     s.DeviceID,
		Role:         model.RoleAdmin,
		ReferralCode: strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6]),
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	return u, true, nil
}
