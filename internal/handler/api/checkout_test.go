//go:build unit

package api_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"gin-checkout-core/internal/domain/order"
	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/handler/api"
	"gin-checkout-core/tests/common/authtest"
	reqdto "gin-checkout-core/internal/handler/dto/request"
	resdto "gin-checkout-core/internal/handler/dto/response"
	"gin-checkout-core/internal/handler/middleware"
	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/internal/pkg/ptr"
	"gin-checkout-core/internal/usecase/commands"
	"gin-checkout-core/internal/usecase/queries"
	"gin-checkout-core/tests/common/builder"
	"gin-checkout-core/tests/common/httptest"
	"gin-checkout-core/tests/common/testutil"
	commandsmock "gin-checkout-core/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

var testBuyerID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

type CheckoutHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockCheckoutCommands
	handler      *api.CheckoutHandler
	cfg          config.Config
}

func (s *CheckoutHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.cfg = config.NewTestConfig()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockCheckoutCommands(s.mockCtrl)
	s.handler = api.NewCheckoutHandler(s.mockCommands)

	asBuyer := authtest.As(testBuyerID, user.RoleCustomer)
	s.router.POST("/checkout/immediate", asBuyer, s.handler.PurchaseImmediate)
	s.router.POST("/checkout/deferred", asBuyer, s.handler.InitiateDeferred)
	s.router.GET("/checkout/deferred/:token", asBuyer, s.handler.PollDeferred)
	s.router.POST("/checkout/deferred/:token/confirm",
		middleware.RequireSettlementSecret(s.cfg.Checkout), s.handler.ConfirmDeferred)
}

func (s *CheckoutHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCheckoutHandlerSuite(t *testing.T) {
	suite.Run(t, new(CheckoutHandlerTestSuite))
}

func orderView(o *order.Order) *queries.OrderView {
	return queries.NewOrderView(o, user.Buyer{ID: o.BuyerID(), Name: "Maria Silva", Email: "buyer@example.com"}, "Fone Bluetooth")
}


func cardRequest() reqdto.PurchaseImmediateRequest {
	return reqdto.PurchaseImmediateRequest{
		ProductID:     1,
		Quantity:      ptr.To(2),
		PaymentMethod: "card",
		Card: &reqdto.CardRequest{
			Number:     "4111111111111111",
			CVV:        "123",
			HolderName: "Maria Silva",
			Expiry:     "12/30",
		},
	}
}

func (s *CheckoutHandlerTestSuite) TestPurchaseImmediate() {
	url := "/checkout/immediate"
	reqBody := cardRequest()
	approved := orderView(builder.NewOrderBuilder().BuildDomain())

	s.Run("success: returns 201 with the approved order", func() {
		s.mockCommands.EXPECT().PurchaseImmediate(gomock.Any(), reqBody.ToInput(testBuyerID, "")).
			Return(approved, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var response resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(approved.ID, response.ID)
		s.Equal("approved", response.PaymentStatus)
		s.Equal("confirmed", response.OrderStatus)
		s.True(decimal.RequireFromString("180.00").Equal(response.Total))
		s.Require().NotNil(response.CardLast4)
		s.Equal("1111", *response.CardLast4)
		httptest.AssertNoSecrets(s.T(), rec, reqBody.Card.Number, `"cvv"`)
	})

	s.Run("success: forwards the Idempotency-Key header", func() {
		s.mockCommands.EXPECT().PurchaseImmediate(gomock.Any(), reqBody.ToInput(testBuyerID, "order-key-0001")).
			Return(approved, nil).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody,
			map[string]string{"Idempotency-Key": "order-key-0001"})
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, nil)
	})

	s.Run("success: omitted quantity is passed through as nil", func() {
		req := cardRequest()
		req.Quantity = nil
		s.mockCommands.EXPECT().PurchaseImmediate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in commands.PurchaseImmediateInput) (*queries.OrderView, error) {
				s.Nil(in.Quantity)
				return approved, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, req, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, nil)
	})

	s.Run("error: 400 Bad Request on binding errors", func() {
		testCases := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{name: "missing productId", mutate: testutil.Field("productId", nil)},
			{name: "productId zero", mutate: testutil.Field("productId", 0)},
			{name: "missing paymentMethod", mutate: testutil.Field("paymentMethod", nil)},
			{name: "quantity not a number", mutate: testutil.Field("quantity", "two")},
			{name: "card without cvv", mutate: testutil.Nested("card", testutil.Field("cvv", nil))},
			{name: "card without holder", mutate: testutil.Nested("card", testutil.Field("holderName", ""))},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, testutil.DtoMap(s.T(), reqBody, tc.mutate), "")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
			})
		}
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			err            error
			expectedStatus int
			expectedMsg    string
		}{
			{"zero quantity", errs.Wrapf(errs.ErrInvalidQuantity, "got %d", 0), http.StatusBadRequest, "Quantity must be between 1 and 2147483647"},
			{"bad card", errs.Wrap(errs.ErrInvalidCard, "luhn"), http.StatusBadRequest, "Invalid card details"},
			{"deferred method", errs.ErrInvalidPaymentMethod, http.StatusBadRequest, "Invalid payment method"},
			{"bad idempotency key", commands.ErrInvalidIdempotencyKey, http.StatusBadRequest, "Invalid Idempotency-Key header"},
			{"unknown product", errs.Wrapf(errs.ErrProductNotFound, "product %d", 1), http.StatusNotFound, "Product not found"},
			{"out of stock", errs.ErrInsufficientStock, http.StatusConflict, "Insufficient stock"},
			{"key in flight", commands.ErrIdempotencyInProgress, http.StatusConflict, "still being processed"},
			{"key reused", errs.ErrIdempotencyKeyReused, http.StatusUnprocessableEntity, "different request"},
			{"operator role", errs.ErrPurchaseDenied, http.StatusForbidden, "not allowed to purchase"},
			{"unexpected", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().PurchaseImmediate(gomock.Any(), gomock.Any()).Return(nil, tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})

	s.Run("error: 503 with Retry-After when reservations keep colliding", func() {
		s.mockCommands.EXPECT().PurchaseImmediate(gomock.Any(), gomock.Any()).
			Return(nil, errs.Wrap(errs.ErrReservationConflict, "product 1")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusServiceUnavailable, "retry")
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Retry-After": "1"})
	})
}

func (s *CheckoutHandlerTestSuite) TestInitiateDeferred() {
	url := "/checkout/deferred"
	reqBody := reqdto.InitiateDeferredRequest{ProductID: 1, Quantity: ptr.To(1)}
	token := strings.Repeat("a", order.TokenLength)

	s.Run("success: returns 201 with the token exactly once", func() {
		charge := &commands.DeferredCharge{
			OrderID:         7,
			Token:           token,
			ConfirmationRef: uuid.New(),
			ExpiresAt:       builder.DefaultNow.Add(5 * time.Minute),
			Total:           decimal.RequireFromString("90.00"),
		}
		s.mockCommands.EXPECT().InitiateDeferred(gomock.Any(), reqBody.ToInput(testBuyerID)).
			Return(charge, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var response resdto.DeferredChargeResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(int64(7), response.OrderID)
		s.Equal(token, response.Token)
		s.True(charge.ExpiresAt.Equal(response.ExpiresAt))
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			err            error
			expectedStatus int
		}{
			{"unknown product", errs.ErrProductNotFound, http.StatusNotFound},
			{"unpriceable product", errs.ErrInvalidPricingInput, http.StatusUnprocessableEntity},
			{"inactive buyer", errs.ErrUserInactive, http.StatusForbidden},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().InitiateDeferred(gomock.Any(), gomock.Any()).Return(nil, tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, "")
			})
		}
	})
}

func (s *CheckoutHandlerTestSuite) TestConfirmDeferred() {
	token := strings.Repeat("b", order.TokenLength)
	url := "/checkout/deferred/" + token + "/confirm"
	secret := map[string]string{middleware.SettlementSecretHeader: s.cfg.Checkout.SettlementSecret}

	s.Run("status code follows the settled payment status", func() {
		testCases := []struct {
			status         order.PaymentStatus
			expectedStatus int
			expectedOrder  string
		}{
			{order.StatusApproved, http.StatusOK, "confirmed"},
			{order.StatusFailed, http.StatusConflict, "canceled"},
			{order.StatusExpired, http.StatusGone, "canceled"},
		}
		for _, tc := range testCases {
			s.Run(tc.status.String(), func() {
				view := orderView(builder.NewOrderBuilder().AsDeferred().WithToken(token).WithStatus(tc.status).BuildDomain())
				s.mockCommands.EXPECT().ConfirmDeferred(gomock.Any(), token).Return(view, nil).Times(1)

				rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, nil, secret)

				s.Equal(tc.expectedStatus, rec.Code)
				var response resdto.OrderResponse
				s.Require().NoError(httptest.DecodeResponseBody(s.T(), rec.Body, &response))
				s.Equal(tc.status.String(), response.PaymentStatus)
				s.Equal(tc.expectedOrder, response.OrderStatus)
				httptest.AssertNoSecrets(s.T(), rec, token)
			})
		}
	})

	s.Run("error: 401 without the settlement secret", func() {
		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, nil,
			map[string]string{middleware.SettlementSecretHeader: "wrong"})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Invalid settlement secret")

		rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Invalid settlement secret")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			err            error
			expectedStatus int
		}{
			{"malformed token", errs.Wrap(errs.ErrMalformedToken, "length"), http.StatusBadRequest},
			{"unknown token", errs.Wrap(errs.ErrOrderNotFound, "unknown deferred token"), http.StatusNotFound},
			{"database down", errs.Mark(errors.New("conn refused"), errs.ErrDatabaseOperationFailed), http.StatusInternalServerError},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().ConfirmDeferred(gomock.Any(), token).Return(nil, tc.err).Times(1)

				rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, nil, secret)
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, "")
			})
		}
	})
}

func (s *CheckoutHandlerTestSuite) TestPollDeferred() {
	token := strings.Repeat("c", order.TokenLength)
	url := "/checkout/deferred/" + token

	s.Run("success: returns the current status", func() {
		status := &commands.DeferredStatus{
			OrderID:     3,
			Status:      "expired",
			OrderStatus: "canceled",
			ExpiresAt:   builder.DefaultNow,
			Total:       decimal.RequireFromString("90.00"),
		}
		s.mockCommands.EXPECT().PollDeferred(gomock.Any(), token, testBuyerID).Return(status, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")

		var response resdto.DeferredStatusResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(int64(3), response.OrderID)
		s.Equal("expired", response.Status)
		s.Equal("canceled", response.OrderStatus)
	})

	s.Run("error: unknown token is 404", func() {
		s.mockCommands.EXPECT().PollDeferred(gomock.Any(), token, testBuyerID).Return(nil, errs.ErrOrderNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Order not found")
	})
}
