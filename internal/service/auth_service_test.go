package service_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/property-service/internal/config"
	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/repository/memory"
	"github.com/spec-kit/property-service/internal/service"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

func newAuthService() (*service.AuthService, *memory.AccountRepository) {
	accounts := memory.NewAccountRepository()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
		},
	}
	return service.NewAuthService(cfg, accounts), accounts
}

func TestAuthRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("registers and issues a token", func(t *testing.T) {
		svc, _ := newAuthService()

		account, token, err := svc.Register(ctx, "Olivia Owner", "owner@example.com", "s3cret", domain.RoleOwner)
		gt.NoError(t, err).Required()
		gt.V(t, account.Role).Equal(domain.RoleOwner)
		gt.B(t, account.Active).True()
		gt.V(t, account.PasswordHash).NotEqual("s3cret")
		gt.V(t, token.Token).NotEqual("")

		claims, err := svc.TokenManager().ParseToken(token.Token)
		gt.NoError(t, err).Required()
		gt.V(t, claims.AccountID).Equal(account.ID)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		svc, _ := newAuthService()
		_, _, err := svc.Register(ctx, "Olivia Owner", "owner@example.com", "s3cret", domain.RoleOwner)
		gt.NoError(t, err).Required()

		_, _, err = svc.Register(ctx, "Impostor", "owner@example.com", "other", domain.RoleTenant)
		gt.B(t, apperrors.HasCode(err, apperrors.CodeConflict)).True()
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		svc, _ := newAuthService()

		_, _, err := svc.Register(ctx, "Nobody", "nobody@example.com", "s3cret", domain.Role("ADMIN"))
		gt.B(t, apperrors.HasCode(err, apperrors.CodeValidationFailed)).True()
	})
}

func TestAuthLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials log in", func(t *testing.T) {
		svc, _ := newAuthService()
		registered, _, err := svc.Register(ctx, "Theo Tenant", "tenant@example.com", "s3cret", domain.RoleTenant)
		gt.NoError(t, err).Required()

		account, token, err := svc.Login(ctx, "tenant@example.com", "s3cret")
		gt.NoError(t, err).Required()
		gt.V(t, account.ID).Equal(registered.ID)
		gt.V(t, token.Token).NotEqual("")
	})

	t.Run("wrong password is unauthenticated", func(t *testing.T) {
		svc, _ := newAuthService()
		_, _, err := svc.Register(ctx, "Theo Tenant", "tenant@example.com", "s3cret", domain.RoleTenant)
		gt.NoError(t, err).Required()

		_, _, err = svc.Login(ctx, "tenant@example.com", "wrong")
		gt.B(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated)).True()
	})

	t.Run("unknown email is unauthenticated", func(t *testing.T) {
		svc, _ := newAuthService()

		_, _, err := svc.Login(ctx, "nobody@example.com", "s3cret")
		gt.B(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated)).True()
	})

	t.Run("disabled account cannot log in", func(t *testing.T) {
		svc, accounts := newAuthService()
		registered, _, err := svc.Register(ctx, "Theo Tenant", "tenant@example.com", "s3cret", domain.RoleTenant)
		gt.NoError(t, err).Required()

		registered.Active = false
		gt.NoError(t, accounts.Update(ctx, registered)).Required()

		_, _, err = svc.Login(ctx, "tenant@example.com", "s3cret")
		gt.B(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated)).True()
	})
}
