package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/security"
	"realty-booking-engine/internal/service"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	tokens := security.NewTokenManager("test-secret-0123456789abcdef-0123456789abcdef", 15, 60*24*7)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{ID: 1, Email: "buyer@test.com", Role: domain.RoleBuyer, PasswordHash: string(hash)}

	t.Run("Success", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewAuthService(userRepo, tokens)
		userRepo.On("GetByEmail", ctx, "buyer@test.com").Return(user, nil).Once()

		access, refresh, got, err := svc.Login(ctx, "buyer@test.com", "s3cret")
		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.Equal(t, int32(1), got.ID)

		claims, err := tokens.ValidateToken(access)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleBuyer, claims.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewAuthService(userRepo, tokens)
		userRepo.On("GetByEmail", ctx, "buyer@test.com").Return(user, nil).Once()

		_, _, _, err := svc.Login(ctx, "buyer@test.com", "wrong")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewAuthService(userRepo, tokens)
		userRepo.On("GetByEmail", ctx, "nobody@test.com").Return(nil, domain.NewError(domain.ErrNotFound, "user", 0, "", "user not found")).Once()

		_, _, _, err := svc.Login(ctx, "nobody@test.com", "s3cret")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	tokens := security.NewTokenManager("test-secret-0123456789abcdef-0123456789abcdef", 15, 60*24*7)
	user := &domain.User{ID: 1, Email: "buyer@test.com", Role: domain.RoleBuyer}

	t.Run("Success", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewAuthService(userRepo, tokens)
		refresh, err := tokens.GenerateRefreshToken(1, "buyer@test.com", domain.RoleBuyer)
		require.NoError(t, err)
		userRepo.On("GetByID", ctx, int32(1)).Return(user, nil).Once()

		access, newRefresh, err := svc.Refresh(ctx, refresh)
		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, newRefresh)
	})

	t.Run("AccessTokenRejected", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewAuthService(userRepo, tokens)
		access, err := tokens.GenerateAccessToken(1, "buyer@test.com", domain.RoleBuyer)
		require.NoError(t, err)

		_, _, err = svc.Refresh(ctx, access)
		assert.ErrorIs(t, err, security.ErrWrongTokenType)
	})
}
