package auth_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/spec-kit/property-service/internal/auth"
	"github.com/spec-kit/property-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 60)

	t.Run("issued token parses back to the same claims", func(t *testing.T) {
		issued, err := tm.GenerateToken("account-1", domain.RoleOwner)
		gt.NoError(t, err).Required()
		gt.V(t, issued.Token).NotEqual("")

		claims, err := tm.ParseToken(issued.Token)
		gt.NoError(t, err).Required()
		gt.V(t, claims.AccountID).Equal("account-1")
		gt.V(t, claims.Role).Equal(domain.RoleOwner)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		other := auth.NewTokenManager("different-secret", 60)
		issued, err := other.GenerateToken("account-1", domain.RoleTenant)
		gt.NoError(t, err).Required()

		_, err = tm.ParseToken(issued.Token)
		gt.Value(t, err).NotNil()
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := tm.ParseToken("not-a-jwt")
		gt.Value(t, err).NotNil()
	})
}
