package httperr

import (
	"net/http"

	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// RetryAfterSeconds is sent with 503 responses for contended reservations.
const RetryAfterSeconds = "1"

type rule struct {
	target  error
	status  int
	message string
}

// Order matters: specific sentinels before the families they are marked with.
var rules = []rule{
	{errs.ErrProductNotFound, http.StatusNotFound, "Product not found"},
	{errs.ErrOrderNotFound, http.StatusNotFound, "Order not found"},
	{errs.ErrUserNotFound, http.StatusUnauthorized, "Account not found"},
	{errs.ErrUserInactive, http.StatusForbidden, "Account is inactive"},
	{errs.ErrPurchaseDenied, http.StatusForbidden, "Account is not allowed to purchase"},
	{errs.ErrInvalidQuantity, http.StatusBadRequest, "Quantity must be between 1 and 2147483647"},
	{errs.ErrInvalidCard, http.StatusBadRequest, "Invalid card details"},
	{errs.ErrInvalidPaymentMethod, http.StatusBadRequest, "Invalid payment method"},
	{errs.ErrMalformedToken, http.StatusBadRequest, "Malformed payment token"},
	{commands.ErrInvalidIdempotencyKey, http.StatusBadRequest, "Invalid Idempotency-Key header"},
	{errs.ErrValidation, http.StatusBadRequest, "Invalid request"},
	{errs.ErrInsufficientStock, http.StatusConflict, "Insufficient stock"},
	{commands.ErrIdempotencyInProgress, http.StatusConflict, "Request with this Idempotency-Key is still being processed"},
	{errs.ErrStatusConflict, http.StatusConflict, "Order status changed concurrently"},
	{errs.ErrReservationConflict, http.StatusServiceUnavailable, "Stock is under contention, retry the purchase"},
	{errs.ErrIdempotencyKeyReused, http.StatusUnprocessableEntity, "Idempotency-Key was used for a different request"},
	{errs.ErrInvalidPricingInput, http.StatusUnprocessableEntity, "Product cannot be priced"},
	{commands.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
}

// Status resolves the HTTP status and public message for a use-case error.
func Status(err error) (int, string) {
	for _, r := range rules {
		if errs.Is(err, r.target) {
			return r.status, r.message
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// Respond aborts the request with the mapped status. Validation failures carry
// the error text as detail; it never contains card numbers or tokens.
func Respond(c *gin.Context, err error) {
	status, msg := Status(err)
	var detail any
	if status == http.StatusBadRequest {
		detail = err.Error()
	}
	if errs.Is(err, errs.ErrReservationConflict) {
		c.Header("Retry-After", RetryAfterSeconds)
	}
	AbortWithError(c, status, err, msg, detail)
}
