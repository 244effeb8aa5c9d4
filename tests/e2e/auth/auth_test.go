//go:build e2e

package auth_test

import (
	"net/http"
	"testing"
	"time"

	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/handler/dto/request"
	"gin-checkout-core/internal/handler/dto/response"
	"gin-checkout-core/internal/pkg/cookie"
	"gin-checkout-core/internal/usecase/queries"
	"gin-checkout-core/tests/common/authtest"
	"gin-checkout-core/tests/common/dbtest"
	"gin-checkout-core/tests/common/httptest"
	"gin-checkout-core/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	loginURL  = "/api/auth/login"
	logoutURL = "/api/auth/logout"
	meURL     = "/api/auth/me"
)

type authSuite struct {
	e2e.SharedSuite
	jwtHelper *authtest.JWTHelper
}

func TestAuthSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(authSuite))
}

func (s *authSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwtHelper = authtest.NewJWTHelper(s.Config.JWT)
}

func (s *authSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()

	// テスト用ユーザーを作成
	dbtest.CreateTestUser(s.T(), s.DB, "buyer@example.com", string(user.RoleCustomer))
	dbtest.CreateTestUser(s.T(), s.DB, "operator@example.com", string(user.RoleOperator))
	dbtest.CreateTestUser(s.T(), s.DB, "inactive@example.com", string(user.RoleCustomer))

	// 非アクティブユーザーを作成
	dbtest.DeactivateUser(s.T(), s.DB, "inactive@example.com")
}

func (s *authSuite) TestLogin() {
	tests := []struct {
		name           string
		email          string
		password       string
		expectedStatus int
		expectedRole   string
		description    string
	}{
		{
			name:           "正常なログイン",
			email:          "buyer@example.com",
			password:       dbtest.DefaultPassword,
			expectedStatus: http.StatusOK,
			expectedRole:   "customer",
			description:    "有効な認証情報でログインできること",
		},
		{
			name:           "オペレーターのログイン",
			email:          "operator@example.com",
			password:       dbtest.DefaultPassword,
			expectedStatus: http.StatusOK,
			expectedRole:   "operator",
			description:    "オペレーターもログインできること",
		},
		{
			name:           "存在しないユーザー",
			email:          "nonexistent@example.com",
			password:       dbtest.DefaultPassword,
			expectedStatus: http.StatusUnauthorized,
			description:    "存在しないユーザーでログインできないこと",
		},
		{
			name:           "間違ったパスワード",
			email:          "buyer@example.com",
			password:       "wrongpassword",
			expectedStatus: http.StatusUnauthorized,
			description:    "間違ったパスワードでログインできないこと",
		},
		{
			name:           "非アクティブユーザー",
			email:          "inactive@example.com",
			password:       dbtest.DefaultPassword,
			expectedStatus: http.StatusForbidden,
			description:    "非アクティブユーザーはログインできないこと",
		},
		{
			name:           "空のメールアドレス",
			email:          "",
			password:       dbtest.DefaultPassword,
			expectedStatus: http.StatusBadRequest,
			description:    "空のメールアドレスは拒否されること",
		},
		{
			name:           "空のパスワード",
			email:          "buyer@example.com",
			password:       "",
			expectedStatus: http.StatusBadRequest,
			description:    "空のパスワードは拒否されること",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			reqBody := request.LoginRequest{
				Email:    tt.email,
				Password: tt.password,
			}

			w := httptest.PerformRequest(t, s.Router, http.MethodPost, loginURL, reqBody, "")
			require.Equal(t, tt.expectedStatus, w.Code, tt.description)

			if tt.expectedStatus == http.StatusOK {
				// 成功時のレスポンス形式チェック
				var loginRes response.LoginResponse
				err := httptest.DecodeResponseBody(t, w.Body, &loginRes)
				require.NoError(t, err)
				require.NotEmpty(t, loginRes.AccessToken, "アクセストークンが空")
				require.Equal(t, "Bearer", loginRes.TokenType)
				require.Equal(t, tt.expectedRole, loginRes.Role)
				require.Greater(t, loginRes.ExpiresIn, int64(0), "有効期限が無効")
				require.NotNil(t, httptest.ExtractCookie(w, cookie.AccessTokenCookieName), "Cookieが設定されていない")

				// last_loginが更新されることを確認
				var lastLogin *time.Time
				err = s.DB.QueryRow(t.Context(), "SELECT last_login FROM users WHERE email = $1", tt.email).Scan(&lastLogin)
				require.NoError(t, err)
				require.NotNil(t, lastLogin, "last_loginが更新されていない")
			}
		})
	}
}

func (s *authSuite) TestMe() {
	tests := []struct {
		name           string
		token          func() string
		expectedStatus int
		description    string
	}{
		{
			name: "ログイン済みユーザー",
			token: func() string {
				return authtest.LoginUser(s.T(), s.Router, "buyer@example.com", dbtest.DefaultPassword)
			},
			expectedStatus: http.StatusOK,
			description:    "自分のプロフィールを取得できること",
		},
		{
			name: "期限切れトークン",
			token: func() string {
				var id uuid.UUID
				err := s.DB.QueryRow(s.T().Context(), "SELECT id FROM users WHERE email = 'buyer@example.com'").Scan(&id)
				require.NoError(s.T(), err)
				return s.jwtHelper.CreateExpiredToken(s.T(), id, user.RoleCustomer)
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "期限切れトークンは拒否されること",
		},
		{
			name: "存在しないユーザーのトークン",
			token: func() string {
				return s.jwtHelper.GenerateToken(s.T(), uuid.New(), user.RoleCustomer)
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "削除済みユーザーのトークンは拒否されること",
		},
		{
			name:           "トークンなし",
			token:          func() string { return "" },
			expectedStatus: http.StatusUnauthorized,
			description:    "トークンなしのアクセスは拒否されること",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, tt.token())
			require.Equal(t, tt.expectedStatus, w.Code, tt.description)

			if tt.expectedStatus == http.StatusOK {
				var me queries.AuthorizedUserView
				err := httptest.DecodeResponseBody(t, w.Body, &me)
				require.NoError(t, err)
				require.Equal(t, "buyer@example.com", me.Email)
				require.Equal(t, "customer", me.Role)
				require.True(t, me.IsActive)
				require.NotContains(t, w.Body.String(), "password", "認証情報が漏れている")
			}
		})
	}
}

func (s *authSuite) TestLogout() {
	s.Run("ログアウトでCookieが失効すること", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, loginURL,
			request.LoginRequest{Email: "buyer@example.com", Password: dbtest.DefaultPassword}, "")
		require.Equal(t, http.StatusOK, w.Code)

		authtest.LogoutUser(t, s.Router, httptest.ExtractCookies(w))
	})

	s.Run("未認証のログアウトは拒否されること", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, logoutURL, nil, "")
		require.Equal(s.T(), http.StatusUnauthorized, w.Code)
	})
}
