package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shinyyama/rewards-backend/internal/auth"
	"github.com/shinyyama/rewards-backend/internal/model"
	"github.com/shinyyama/rewards-backend/internal/reqctx"
	"github.com/shinyyama/rewards-backend/internal/repository"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username        string
	Password        string
	PhoneNumber     string
	DeviceID        string
	ReferralCode    string
	FirebaseIDToken string
}

type Session struct {
	User  *model.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a bearer token to a fresh user row.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	tokens   *auth.TokenIssuer
	revoker  auth.Revoker
	firebase auth.IDTokenVerifier
}

// NewAuthService wires local sessions. firebase may be nil.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer, revoker auth.Revoker, firebase auth.IDTokenVerifier) AuthService {
	return &authService{users: users, tokens: tokens, revoker: revoker, firebase: firebase}
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.DeviceID = strings.TrimSpace(in.DeviceID)
	in.ReferralCode = strings.ToUpper(strings.TrimSpace(in.ReferralCode))
}

func (in RegisterInput) validate() error {
	if l := len(in.Username); l < 3 || l > 64 {
		return fmt.Errorf("%w: username must be 3-64 characters", ErrInvalidRequest)
	}
	if len(in.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidRequest)
	}
	if len(in.PhoneNumber) < 10 {
		return fmt.Errorf("%w: invalid phone number", ErrInvalidRequest)
	}
	if in.DeviceID == "" {
		return fmt.Errorf("%w: device id is required", ErrInvalidRequest)
	}
	return nil
}

func found(u *model.User, err error) (bool, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return u != nil, nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.normalize()

	var firebaseUID *string
	if in.FirebaseIDToken != "" {
		if s.firebase == nil {
			return nil, fmt.Errorf("%w: firebase sign-in is not enabled", ErrInvalidRequest)
		}
		id, err := s.firebase.VerifyIDToken(ctx, in.FirebaseIDToken)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid firebase token", ErrUnauthorized)
		}
		if in.PhoneNumber == "" {
			in.PhoneNumber = id.PhoneNumber
		}
		if ok, err := found(s.users.FindByFirebaseUID(ctx, id.UID)); err != nil {
			return nil, err
		} else if ok {
			return nil, fmt.Errorf("%w: firebase account already registered", ErrConflict)
		}
		firebaseUID = &id.UID
	}

	if err := in.validate(); err != nil {
		return nil, err
	}

	checks := []struct {
		lookup func(context.Context, string) (*model.User, error)
		value  string
		msg    string
	}{
		{s.users.FindByUsername, in.Username, "username already exists"},
		{s.users.FindByPhoneNumber, in.PhoneNumber, "phone number already registered"},
		{s.users.FindByDeviceID, in.DeviceID, "an account already exists on this device"},
	}
	for _, c := range checks {
		ok, err := found(c.lookup(ctx, c.value))
		if err != nil {
			return nil, err
		}
		if ok {
			return nil, fmt.Errorf("%w: %s", ErrConflict, c.msg)
		}
	}

	var referredBy *string
	if in.ReferralCode != "" {
		ok, err := found(s.users.FindByReferralCode(ctx, in.ReferralCode))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: unknown referral code", ErrInvalidRequest)
		}
		referredBy = &in.ReferralCode
	}

	code, err := s.newReferralCode(ctx)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     in.Username,
		Password:     hash,
		PhoneNumber:  in.PhoneNumber,
		DeviceID:     in.DeviceID,
		FirebaseUID:  firebaseUID,
		Role:         model.RoleUser,
		ReferralCode: code,
		ReferredBy:   referredBy,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: account already exists", ErrConflict)
		}
		return nil, err
	}
	log.Printf("%sregistered user %d (%s)", reqctx.Prefix(ctx), u.ID, u.Username)
	return s.session(u)
}

// newReferralCode draws 6-character uppercase codes until an unused one appears.
func (s *authService) newReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < 5; i++ {
		code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
		ok, err := found(s.users.FindByReferralCode(ctx, code))
		if err != nil {
			return "", err
		}
		if !ok {
			return code, nil
		}
	}
	return "", errors.New("could not allocate referral code")
}

func (s *authService) session(u *model.User) (*Session, error) {
	tok, _, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: tok}, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
		}
		return nil, err
	}
	if !auth.CheckPassword(u.Password, password) {
		return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	}
	return s.session(u)
}

func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		// Firebase sessions are ended client-side.
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims, err := s.tokens.Parse(token)
	if err == nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, auth.ErrTokenRevoked)
		}
		id, _ := claims.UserID()
		return s.lookup(s.users.FindByID(ctx, id))
	}
	if s.firebase == nil {
		return nil, ErrUnauthorized
	}
	fid, err := s.firebase.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return s.lookup(s.users.FindByFirebaseUID(ctx, fid.UID))
}

func (s *authService) lookup(u *model.User, err error) (*model.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return u, nil
}
