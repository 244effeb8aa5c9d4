package api

import (
	"net/http"

	"gin-checkout-core/internal/domain/order"
	reqdto "gin-checkout-core/internal/handler/dto/request"
	resdto "gin-checkout-core/internal/handler/dto/response"
	"gin-checkout-core/internal/handler/httperr"
	"gin-checkout-core/internal/handler/middleware"
	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const idempotencyKeyHeader = "Idempotency-Key"

type CheckoutHandler struct {
	checkoutCommands commands.CheckoutCommands
}

func NewCheckoutHandler(checkoutCommands commands.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutCommands: checkoutCommands,
	}
}

// @Summary Immediate purchase
// @Description Buy a product with card or boleto. Stock is reserved and the order approved in one step.
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Replays return the original order"
// @Param request body reqdto.PurchaseImmediateRequest true "Purchase request"
// @Success 201 {object} resdto.OrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /checkout/immediate [post]
func (h *CheckoutHandler) PurchaseImmediate(c *gin.Context) {
	buyerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing user in context"), "User not authenticated", nil)
		return
	}

	var req reqdto.PurchaseImmediateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.checkoutCommands.PurchaseImmediate(c.Request.Context(), req.ToInput(buyerID, c.GetHeader(idempotencyKeyHeader)))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromOrderView(view))
}

// @Summary Open deferred payment
// @Description Create a pending order with a single-use payment token. Stock is only reserved on confirmation.
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.InitiateDeferredRequest true "Deferred payment request"
// @Success 201 {object} resdto.DeferredChargeResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /checkout/deferred [post]
func (h *CheckoutHandler) InitiateDeferred(c *gin.Context) {
	buyerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing user in context"), "User not authenticated", nil)
		return
	}

	var req reqdto.InitiateDeferredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	charge, err := h.checkoutCommands.InitiateDeferred(c.Request.Context(), req.ToInput(buyerID))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromDeferredCharge(charge))
}

// @Summary Confirm deferred payment
// @Description Settlement callback from the payment provider. Repeated calls return the same result.
// @Tags checkout
// @Produce json
// @Param X-Settlement-Secret header string true "Shared settlement secret"
// @Param token path string true "Deferred payment token"
// @Success 200 {object} resdto.OrderResponse "approved"
// @Failure 409 {object} resdto.OrderResponse "failed: stock ran out before confirmation"
// @Failure 410 {object} resdto.OrderResponse "expired"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /checkout/deferred/{token}/confirm [post]
func (h *CheckoutHandler) ConfirmDeferred(c *gin.Context) {
	view, err := h.checkoutCommands.ConfirmDeferred(c.Request.Context(), c.Param("token"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	// the order is the body for every outcome; the status code tells them apart
	status := http.StatusOK
	switch order.PaymentStatus(view.PaymentStatus) {
	case order.StatusFailed:
		status = http.StatusConflict
		_ = c.Error(errs.Newf("deferred payment for order %d failed", view.ID))
	case order.StatusExpired:
		status = http.StatusGone
		_ = c.Error(errs.Wrapf(errs.ErrPaymentExpired, "order %d", view.ID))
	}
	c.JSON(status, resdto.FromOrderView(view))
}

// @Summary Poll deferred payment
// @Description Current status of a deferred payment. An overdue pending payment is expired on read.
// @Tags checkout
// @Produce json
// @Security BearerAuth
// @Param token path string true "Deferred payment token"
// @Success 200 {object} resdto.DeferredStatusResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /checkout/deferred/{token} [get]
func (h *CheckoutHandler) PollDeferred(c *gin.Context) {
	buyerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing user in context"), "User not authenticated", nil)
		return
	}

	status, err := h.checkoutCommands.PollDeferred(c.Request.Context(), c.Param("token"), buyerID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromDeferredStatus(status))
}
