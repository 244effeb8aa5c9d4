//go:build unit

package user_test

import (
	"strings"
	"testing"

	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cmpOpts = []cmp.Option{
	cmpopts.IgnoreUnexported(user.User{}),
	cmpopts.EquateEmpty(),
}

type testCase struct {
	name   string
	mutate func(*builder.UserBuilder)
	errIs  error
}

func TestUser(t *testing.T) {
	t.Run("基本成功ケース", func(t *testing.T) {

		actual, err := builder.NewUserBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		email, _ := user.NewEmail("buyer@example.com")
		role, _ := user.NewRole("customer")
		expected, err := user.NewUser("Maria Silva", email, "hashed_password", role)
		require.NoError(t, err)

		if diff := cmp.Diff(expected, actual, cmpOpts...); diff != "" {
			t.Errorf("User mismatch (-want +got):\n%s", diff)
		}

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.True(t, actual.IsActive())
		assert.Nil(t, actual.LastLogin())
	})

	t.Run("メールアドレス検証", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "有効なメールアドレスOK",
				mutate: func(b *builder.UserBuilder) { b.WithEmail("valid@example.com") },
			},
			{
				name:   "大文字と前後の空白は正規化OK",
				mutate: func(b *builder.UserBuilder) { b.WithEmail("  Valid@Example.COM ") },
			},
			{
				name:   "空のメールアドレスNG",
				mutate: func(b *builder.UserBuilder) { b.WithEmail("") },
				errIs:  user.ErrInvalidEmail,
			},
			{
				name:   "@なしNG",
				mutate: func(b *builder.UserBuilder) { b.WithEmail("invalidemail.com") },
				errIs:  user.ErrInvalidEmail,
			},
		})
	})

	t.Run("ロール検証", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "customer ロールOK",
				mutate: func(b *builder.UserBuilder) { b.WithRole("customer") },
			},
			{
				name:   "operator ロールOK",
				mutate: func(b *builder.UserBuilder) { b.WithRole("operator") },
			},
			{
				name:   "admin ロールOK",
				mutate: func(b *builder.UserBuilder) { b.WithRole("admin") },
			},
			{
				name:   "無効なロールNG",
				mutate: func(b *builder.UserBuilder) { b.WithRole("viewer") },
				errIs:  user.ErrInvalidRole,
			},
		})
	})

	t.Run("名前検証", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "空の名前NG",
				mutate: func(b *builder.UserBuilder) { b.WithName("   ") },
				errIs:  user.ErrInvalidName,
			},
			{
				name:   "101文字NG",
				mutate: func(b *builder.UserBuilder) { b.WithName(strings.Repeat("a", 101)) },
				errIs:  user.ErrInvalidName,
			},
		})
	})

	t.Run("購入者情報は機微情報を含まない", func(t *testing.T) {
		usr, err := builder.NewUserBuilder().BuildDomain()
		require.NoError(t, err)

		expected := user.Buyer{ID: usr.ID(), Name: "Maria Silva", Email: "buyer@example.com"}
		if diff := cmp.Diff(expected, usr.Buyer()); diff != "" {
			t.Errorf("Buyer mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("購入権限", func(t *testing.T) {
		assert.True(t, user.RoleCustomer.CanPurchase())
		assert.True(t, user.RoleAdmin.CanPurchase())
		assert.False(t, user.RoleOperator.CanPurchase())
	})
}

func TestCredentials(t *testing.T) {
	cred, err := user.NewCredentials(" Buyer@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", cred.Email().Value())

	_, err = user.NewCredentials("buyer@example.com", "short")
	require.ErrorIs(t, err, user.ErrPasswordTooWeak)
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {

			actual, err := builder.NewUserBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.Error(t, err)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
