package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qaforge/qaforge/internal/auth"
	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/domain"
	"github.com/qaforge/qaforge/internal/ports"
	"github.com/qaforge/qaforge/pkg/apperror"
)

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// AuthUseCase handles login and identity lookups
type AuthUseCase struct {
	users   ports.UserRepository
	limiter ports.LoginLimiter
	tokens  *auth.TokenService
	cfg     config.AuthConfig
	logger  *logrus.Logger
}

// NewAuthUseCase creates a new auth use case
func NewAuthUseCase(users ports.UserRepository, limiter ports.LoginLimiter, tokens *auth.TokenService, cfg config.AuthConfig, logger *logrus.Logger) *AuthUseCase {
	return &AuthUseCase{
		users:   users,
		limiter: limiter,
		tokens:  tokens,
		cfg:     cfg,
		logger:  logger,
	}
}

// Login verifies credentials and issues an access token. Failed attempts are
// rate limited per account when a limiter is configured.
func (uc *AuthUseCase) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperror.NewBadRequest("email and password are required")
	}

	if uc.limitingEnabled() {
		failures, err := uc.limiter.Failures(ctx, email)
		if err != nil {
			// the limiter must never lock users out when it is down
			uc.logger.WithError(err).Warn("login limiter unavailable")
		} else if failures >= uc.cfg.LoginMaxAttempts {
			return nil, apperror.NewForbidden("too many failed login attempts, try again later")
		}
	}

	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !user.Active || !auth.CheckPassword(user.PasswordHash, req.Password) {
		uc.recordFailure(ctx, email)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if uc.limitingEnabled() {
		if err := uc.limiter.Reset(ctx, email); err != nil {
			uc.logger.WithError(err).Warn("failed to reset login failures")
		}
	}

	token, expiresAt, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	uc.logger.WithField("user", user.ID).Info("user logged in")

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// Me returns the authenticated user's profile
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, apperror.NewNotFound("user not found")
	}
	return user, nil
}

func (uc *AuthUseCase) limitingEnabled() bool {
	return uc.cfg.RateLimitEnabled && uc.limiter != nil
}

func (uc *AuthUseCase) recordFailure(ctx context.Context, email string) {
	if !uc.limitingEnabled() {
		return
	}
	if _, err := uc.limiter.RecordFailure(ctx, email, uc.cfg.LoginWindow); err != nil {
		uc.logger.WithError(err).Warn("failed to record login failure")
	}
}
