package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qaforge/qaforge/internal/auth"
	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/domain"
	"github.com/qaforge/qaforge/pkg/apperror"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:         "test-secret",
		AccessTokenTTL:    30 * time.Minute,
		PasswordMinLength: 8,
		LoginMaxAttempts:  3,
		LoginWindow:       15 * time.Minute,
		RateLimitEnabled:  true,
	}
}

func testUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return domain.NewUser("qa@example.com", "QA Analyst", hash, domain.UserRoleUser)
}

func newAuthUseCase(users *MockUserRepo, limiter *MockLimiter) *AuthUseCase {
	cfg := testAuthConfig()
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL)
	return NewAuthUseCase(users, limiter, tokens, cfg, testLogger())
}

func TestLogin(t *testing.T) {
	user := testUser(t, "s3cret-pass")
	users := new(MockUserRepo)
	limiter := new(MockLimiter)
	users.On("FindByEmail", mock.Anything, "qa@example.com").Return(user, nil)
	limiter.On("Failures", mock.Anything, "qa@example.com").Return(0, nil)
	limiter.On("Reset", mock.Anything, "qa@example.com").Return(nil)

	uc := newAuthUseCase(users, limiter)
	resp, err := uc.Login(context.Background(), LoginRequest{Email: "QA@example.com", Password: "s3cret-pass"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
	limiter.AssertCalled(t, "Reset", mock.Anything, "qa@example.com")
}

func TestLogin_WrongPassword(t *testing.T) {
	user := testUser(t, "s3cret-pass")
	users := new(MockUserRepo)
	limiter := new(MockLimiter)
	users.On("FindByEmail", mock.Anything, "qa@example.com").Return(user, nil)
	limiter.On("Failures", mock.Anything, "qa@example.com").Return(0, nil)
	limiter.On("RecordFailure", mock.Anything, "qa@example.com", 15*time.Minute).Return(1, nil)

	uc := newAuthUseCase(users, limiter)
	_, err := uc.Login(context.Background(), LoginRequest{Email: "qa@example.com", Password: "wrong"})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	limiter.AssertCalled(t, "RecordFailure", mock.Anything, "qa@example.com", 15*time.Minute)
}

func TestLogin_UnknownUser(t *testing.T) {
	users := new(MockUserRepo)
	limiter := new(MockLimiter)
	users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)
	limiter.On("Failures", mock.Anything, "nobody@example.com").Return(0, nil)
	limiter.On("RecordFailure", mock.Anything, "nobody@example.com", mock.Anything).Return(1, nil)

	uc := newAuthUseCase(users, limiter)
	_, err := uc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "whatever"})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestLogin_InactiveUser(t *testing.T) {
	user := testUser(t, "s3cret-pass")
	user.Deactivate()
	users := new(MockUserRepo)
	limiter := new(MockLimiter)
	users.On("FindByEmail", mock.Anything, "qa@example.com").Return(user, nil)
	limiter.On("Failures", mock.Anything, "qa@example.com").Return(0, nil)
	limiter.On("RecordFailure", mock.Anything, "qa@example.com", mock.Anything).Return(1, nil)

	uc := newAuthUseCase(users, limiter)
	_, err := uc.Login(context.Background(), LoginRequest{Email: "qa@example.com", Password: "s3cret-pass"})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestLogin_RateLimited(t *testing.T) {
	users := new(MockUserRepo)
	limiter := new(MockLimiter)
	limiter.On("Failures", mock.Anything, "qa@example.com").Return(3, nil)

	uc := newAuthUseCase(users, limiter)
	_, err := uc.Login(context.Background(), LoginRequest{Email: "qa@example.com", Password: "s3cret-pass"})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
	users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestLogin_MissingFields(t *testing.T) {
	uc := newAuthUseCase(new(MockUserRepo), new(MockLimiter))

	_, err := uc.Login(context.Background(), LoginRequest{})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBadRequest))
}

func TestMe(t *testing.T) {
	user := testUser(t, "s3cret-pass")
	users := new(MockUserRepo)
	users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	uc := newAuthUseCase(users, new(MockLimiter))
	found, err := uc.Me(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)
}

func TestMe_NotFound(t *testing.T) {
	users := new(MockUserRepo)
	users.On("FindByID", mock.Anything, "missing").Return(nil, nil)

	uc := newAuthUseCase(users, new(MockLimiter))
	_, err := uc.Me(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}
