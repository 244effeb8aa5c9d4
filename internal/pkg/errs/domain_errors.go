package errs

// Sentinel errors shared by the checkout use cases and the HTTP layer.
var (
	// Lookup errors
	ErrProductNotFound = New("product not found")
	ErrOrderNotFound   = New("order not found")
	ErrUserNotFound    = New("user not found")

	// Access errors
	ErrUserInactive   = New("user inactive")
	ErrPurchaseDenied = New("role is not allowed to purchase")

	// Validation errors
	ErrValidation           = New("validation error")
	ErrInvalidQuantity      = Mark(New("quantity must be between 1 and 2147483647"), ErrValidation)
	ErrInvalidCard          = Mark(New("invalid card details"), ErrValidation)
	ErrInvalidPaymentMethod = Mark(New("invalid payment method"), ErrValidation)
	ErrMalformedToken       = Mark(New("malformed deferred payment token"), ErrValidation)

	// Inventory errors
	ErrInsufficientStock   = New("insufficient stock")
	ErrReservationConflict = New("reservation conflict: retries exhausted")

	// Payment workflow errors
	ErrPaymentExpired      = New("deferred payment expired")
	ErrStatusConflict      = New("order status changed concurrently")
	ErrInvalidPricingInput = New("invalid pricing input")

	// Idempotency errors
	ErrIdempotencyKeyReused = New("idempotency key reused with a different request")

	// Operation errors
	ErrDatabaseOperationFailed = New("database operation failed")
)
