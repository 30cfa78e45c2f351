package auth

import (
	"context"
	"errors"
	"time"

	"auctionhouse/internal/models"
	"auctionhouse/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// LoginLimiter throttles on failed logins per email+origin.
type LoginLimiter interface {
	AllowLogin(ctx context.Context, email, originKey string) (bool, error)
}

type IAuthService interface {
	Login(ctx context.Context, email, password, origin string) (string, *models.User, error)
	UserFromToken(ctx context.Context, token string) (*models.User, error)
}

type authService struct {
	store    *repository.Store
	limiter  LoginLimiter
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(store *repository.Store, limiter LoginLimiter, secret string, tokenTTL time.Duration) IAuthService {
	return &authService{
		store:    store,
		limiter:  limiter,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Login verifies credentials and issues a token. Every real attempt is
// recorded once; rate-limited requests are recorded as failures too, so
// hammering a locked pair keeps it locked.
func (s *authService) Login(ctx context.Context, email, password, origin string) (string, *models.User, error) {
	allowed, err := s.limiter.AllowLogin(ctx, email, origin)
	if err != nil {
		zap.L().Warn("auth.rate_limit_check", zap.Error(err))
		allowed = true
	}
	if !allowed {
		s.record(ctx, email, origin, false)
		return "", nil, ErrTooManyAttempts
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.record(ctx, email, origin, false)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !user.EmailVerified {
		s.record(ctx, email, origin, false)
		return "", nil, ErrEmailNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.record(ctx, email, origin, false)
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateToken(user.ID, s.secret, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	s.record(ctx, email, origin, true)
	return token, user, nil
}

func (s *authService) UserFromToken(ctx context.Context, token string) (*models.User, error) {
	userID, err := GetUserIDFromToken(token, s.secret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) record(ctx context.Context, email, origin string, success bool) {
	err := s.store.InsertLoginAttempt(ctx, &models.LoginAttempt{
		ID:        uuid.New().String(),
		Email:     email,
		IPAddress: origin,
		Success:   success,
		CreatedAt: s.now(),
	})
	if err != nil {
		zap.L().Error("auth.record_attempt", zap.Error(err))
	}
}
