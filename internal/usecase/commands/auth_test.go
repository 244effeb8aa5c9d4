//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/infra/memory"
	"gin-checkout-core/internal/pkg/clock"
	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/internal/pkg/jwt"
	"gin-checkout-core/internal/pkg/password"
	"gin-checkout-core/internal/usecase/commands"
	"gin-checkout-core/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (commands.AuthCommands, *memory.Store, *jwt.Service, *clock.MockClock) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, memory.SeedDemo(store))

	hash, err := password.Hash(memory.DemoPassword)
	require.NoError(t, err)
	inactive, err := builder.NewUserBuilder().
		WithEmail("inactive@example.com").
		WithPasswordHash(hash).
		AsInactive().
		BuildDomain()
	require.NoError(t, err)
	store.SeedUser(inactive)

	clk := clock.NewMockClock(builder.DefaultNow)
	jwtService := jwt.NewService("test-secret", time.Hour)
	return commands.NewAuthCommands(store, jwtService, clk), store, jwtService, clk
}

func TestAuthCommands_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a token and records the login", func(t *testing.T) {
		auth, store, jwtService, clk := newAuthFixture(t)

		result, err := auth.Login(ctx, commands.LoginInput{Email: "buyer@example.com", Password: memory.DemoPassword})

		require.NoError(t, err)
		assert.Equal(t, user.RoleCustomer, result.Role)
		assert.Equal(t, time.Hour, result.ExpiresIn)

		claims, err := jwtService.ValidateToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, result.UserID, claims.UserID)
		assert.Equal(t, "customer", claims.Role)

		u, err := store.CommandReads().UserByID(ctx, result.UserID)
		require.NoError(t, err)
		require.NotNil(t, u.LastLogin())
		assert.True(t, clk.Now().Equal(*u.LastLogin()))
	})

	t.Run("rejections", func(t *testing.T) {
		auth, _, _, _ := newAuthFixture(t)

		tests := []struct {
			name string
			in   commands.LoginInput
			want error
		}{
			{"wrong password", commands.LoginInput{Email: "buyer@example.com", Password: "password124"}, commands.ErrInvalidCredentials},
			{"unknown email", commands.LoginInput{Email: "nobody@example.com", Password: memory.DemoPassword}, commands.ErrInvalidCredentials},
			{"malformed email", commands.LoginInput{Email: "not-an-email", Password: memory.DemoPassword}, commands.ErrInvalidCredentials},
			{"short password", commands.LoginInput{Email: "buyer@example.com", Password: "short"}, commands.ErrInvalidCredentials},
			{"inactive account", commands.LoginInput{Email: "inactive@example.com", Password: memory.DemoPassword}, errs.ErrUserInactive},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result, err := auth.Login(ctx, tt.in)
				require.Error(t, err)
				assert.Nil(t, result)
				assert.True(t, errs.Is(err, tt.want), "got %v", err)
			})
		}
	})
}
