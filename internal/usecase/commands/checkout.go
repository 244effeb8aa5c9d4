package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"regexp"
	"time"

	"gin-checkout-core/internal/domain/order"
	"gin-checkout-core/internal/domain/payment"
	"gin-checkout-core/internal/domain/product"
	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/pkg/clock"
	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/internal/pkg/redact"
	"gin-checkout-core/internal/pkg/telemetry"
	"gin-checkout-core/internal/usecase/inventory"
	"gin-checkout-core/internal/usecase/queries"
	"gin-checkout-core/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName           = "gin-checkout-core/checkout"
	idempotencyKeyTTL    = 24 * time.Hour
	outcomeRejectedLabel = "rejected"
)

var (
	ErrInvalidIdempotencyKey = errs.Mark(errs.New("idempotency key must be 8-128 characters of [A-Za-z0-9_-:.]"), errs.ErrValidation)
	ErrIdempotencyInProgress = errs.New("request with this idempotency key is still in progress")

	idempotencyKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_\-:.]{8,128}$`)
)

//go:generate mockgen -source=checkout.go -destination=../../../tests/mock/commands/checkout.go -package=commandsmock
type CheckoutCommands interface {
	PurchaseImmediate(ctx context.Context, in PurchaseImmediateInput) (*queries.OrderView, error)
	InitiateDeferred(ctx context.Context, in InitiateDeferredInput) (*DeferredCharge, error)
	ConfirmDeferred(ctx context.Context, token string) (*queries.OrderView, error)
	PollDeferred(ctx context.Context, token string, buyerID uuid.UUID) (*DeferredStatus, error)
}

type checkoutCommandsImpl struct {
	uow     shared.UnitOfWork
	engine  inventory.Engine
	factory *order.Factory
	clock   clock.Clock
	metrics *telemetry.Metrics
	tracer  trace.Tracer
}

func NewCheckoutCommands(
	uow shared.UnitOfWork,
	engine inventory.Engine,
	factory *order.Factory,
	clock clock.Clock,
	metrics *telemetry.Metrics,
) CheckoutCommands {
	return &checkoutCommandsImpl{
		uow:     uow,
		engine:  engine,
		factory: factory,
		clock:   clock,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

func (c *checkoutCommandsImpl) PurchaseImmediate(ctx context.Context, in PurchaseImmediateInput) (*queries.OrderView, error) {
	ctx, span := c.tracer.Start(ctx, "checkout.PurchaseImmediate", trace.WithAttributes(
		attribute.Int64("product.id", in.ProductID),
		attribute.String("payment.method", in.Method),
	))
	defer span.End()

	view, err := c.purchaseImmediate(ctx, in)
	if err != nil {
		c.metrics.CheckoutResults.WithLabelValues(in.Method, outcomeRejectedLabel).Inc()
		span.RecordError(err)
		return nil, err
	}
	c.metrics.CheckoutResults.WithLabelValues(view.PaymentMethod, view.PaymentStatus).Inc()
	span.SetAttributes(attribute.Int64("order.id", view.ID))
	return view, nil
}

func (c *checkoutCommandsImpl) purchaseImmediate(ctx context.Context, in PurchaseImmediateInput) (*queries.OrderView, error) {
	quantity, err := order.NormalizeQuantity(in.Quantity)
	if err != nil {
		return nil, err
	}

	method, err := order.ParsePaymentMethod(in.Method)
	if err != nil {
		return nil, err
	}
	if !method.SettlesImmediately() {
		return nil, errs.Wrapf(errs.ErrInvalidPaymentMethod, "%s must use the deferred flow", method)
	}

	var card *payment.CardSummary
	if method == order.MethodCard {
		if in.Card == nil {
			return nil, errs.Wrap(errs.ErrInvalidCard, "card details are required")
		}
		summary, err := payment.ValidateCard(in.Card.toDomain(), c.clock.Now())
		if err != nil {
			slog.InfoContext(ctx, "card rejected",
				"card", redact.CardNumber(in.Card.Number),
				"error", err.Error())
			return nil, err
		}
		card = &summary
	}

	if in.IdempotencyKey != "" && !idempotencyKeyPattern.MatchString(in.IdempotencyKey) {
		return nil, ErrInvalidIdempotencyKey
	}

	buyer, err := c.resolveBuyer(ctx, in.BuyerID)
	if err != nil {
		return nil, err
	}

	prod, err := c.loadProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	draft, err := c.factory.NewImmediateOrder(buyer.ID(), prod, quantity, method, card)
	if err != nil {
		return nil, err
	}

	requestHash := calculateRequestHash(in.BuyerID, in.ProductID, quantity, method, card)

	var (
		created  *order.Order
		replayID *int64
	)
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		created, replayID = nil, nil

		if in.IdempotencyKey != "" {
			id, err := c.claimIdempotencyKey(ctx, tx, in.IdempotencyKey, buyer.ID(), requestHash)
			if err != nil {
				return err
			}
			if id != nil {
				replayID = id
				return nil
			}
		}

		if _, err := c.engine.Reserve(ctx, tx, prod.ID(), quantity); err != nil {
			return err
		}

		o, err := tx.Orders().Create(ctx, draft)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if in.IdempotencyKey != "" {
			if err := tx.Idempotency().Complete(ctx, in.IdempotencyKey, buyer.ID(), o.ID()); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}

		if err := appendEvent(ctx, tx, o, c.clock.Now()); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "immediate purchase rejected",
			"product_id", in.ProductID,
			"quantity", quantity,
			"method", method.String(),
			"error", err.Error())
		return nil, err
	}

	if replayID != nil {
		slog.InfoContext(ctx, "idempotent replay of immediate purchase", "order_id", *replayID)
		o, err := c.loadOrder(ctx, *replayID)
		if err != nil {
			return nil, err
		}
		return c.viewOf(ctx, o)
	}

	slog.InfoContext(ctx, "immediate purchase approved",
		"order_id", created.ID(),
		"product_id", created.ProductID(),
		"quantity", created.Quantity(),
		"method", method.String())

	return queries.NewOrderView(created, buyer.Buyer(), prod.Name()), nil
}

// claimIdempotencyKey returns the earlier order id when the key was already used
// for an identical request. Concurrent claims serialize on the key's row.
func (c *checkoutCommandsImpl) claimIdempotencyKey(ctx context.Context, tx shared.Tx, key string, buyerID uuid.UUID, requestHash string) (*int64, error) {
	now := c.clock.Now()
	inserted, err := tx.Idempotency().TryInsert(ctx, key, buyerID, requestHash, now.Add(idempotencyKeyTTL))
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if inserted {
		return nil, nil
	}

	record, err := tx.Reads().IdempotencyByKey(ctx, key, buyerID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if now.After(record.ExpiresAt) {
		claimed, err := tx.Idempotency().ClaimExpired(ctx, key, buyerID, requestHash, now, now.Add(idempotencyKeyTTL))
		if err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if claimed {
			return nil, nil
		}
		return nil, ErrIdempotencyInProgress
	}

	if record.RequestHash != requestHash {
		return nil, errs.ErrIdempotencyKeyReused
	}
	if record.Status == shared.IdempotencyStatusCompleted && record.OrderID != nil {
		return record.OrderID, nil
	}
	return nil, ErrIdempotencyInProgress
}

func (c *checkoutCommandsImpl) InitiateDeferred(ctx context.Context, in InitiateDeferredInput) (*DeferredCharge, error) {
	ctx, span := c.tracer.Start(ctx, "checkout.InitiateDeferred", trace.WithAttributes(
		attribute.Int64("product.id", in.ProductID),
	))
	defer span.End()

	quantity, err := order.NormalizeQuantity(in.Quantity)
	if err != nil {
		return nil, err
	}

	buyer, err := c.resolveBuyer(ctx, in.BuyerID)
	if err != nil {
		return nil, err
	}

	prod, err := c.loadProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	draft, err := c.factory.NewDeferredOrder(buyer.ID(), prod, quantity)
	if err != nil {
		return nil, err
	}

	var created *order.Order
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := tx.Orders().Create(ctx, draft)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := appendEvent(ctx, tx, o, c.clock.Now()); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	charge := created.Deferred()
	c.metrics.CheckoutResults.WithLabelValues(created.Method().String(), created.Status().String()).Inc()
	span.SetAttributes(attribute.Int64("order.id", created.ID()))
	slog.InfoContext(ctx, "deferred payment opened",
		"order_id", created.ID(),
		"token", redact.Token(charge.Token()),
		"expires_at", charge.ExpiresAt())

	return &DeferredCharge{
		OrderID:         created.ID(),
		Token:           charge.Token(),
		ConfirmationRef: charge.ConfirmationRef(),
		ExpiresAt:       charge.ExpiresAt(),
		Total:           created.Total(),
	}, nil
}

func (c *checkoutCommandsImpl) ConfirmDeferred(ctx context.Context, token string) (*queries.OrderView, error) {
	ctx, span := c.tracer.Start(ctx, "checkout.ConfirmDeferred")
	defer span.End()

	o, err := c.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("order.id", o.ID()))

	if o.IsTerminal() {
		slog.InfoContext(ctx, "deferred payment already settled",
			"order_id", o.ID(),
			"token", redact.Token(token),
			"status", o.Status().String())
		return c.viewOf(ctx, o)
	}

	now := c.clock.Now()
	if o.IsOverdue(now) {
		expired, err := c.expire(ctx, o, now)
		if err != nil {
			return nil, err
		}
		return c.viewOf(ctx, expired)
	}

	settled, err := c.settle(ctx, o, now)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("order.status", settled.Status().String()))
	return c.viewOf(ctx, settled)
}

// settle reserves stock and moves the order out of pending in one unit of work.
// When another confirmation wins the status write, this one rolls back,
// restoring any stock it took, and reports the winner's result.
func (c *checkoutCommandsImpl) settle(ctx context.Context, o *order.Order, now time.Time) (*order.Order, error) {
	var next order.PaymentStatus
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		next = order.StatusApproved
		if _, err := c.engine.Reserve(ctx, tx, o.ProductID(), o.Quantity()); err != nil {
			if !errs.Is(err, errs.ErrInsufficientStock) && !errs.Is(err, errs.ErrProductNotFound) {
				return err
			}
			next = order.StatusFailed
		}

		if err := transition(ctx, tx, o, next, now); err != nil {
			return err
		}
		return appendEvent(ctx, tx, withStatus(o, next, now), now)
	})
	if errs.Is(err, errs.ErrStatusConflict) {
		slog.InfoContext(ctx, "deferred payment settled concurrently",
			"order_id", o.ID(),
			"token", redact.Token(o.Deferred().Token()))
		return c.loadOrder(ctx, o.ID())
	}
	if err != nil {
		slog.ErrorContext(ctx, "deferred payment settlement failed",
			"order_id", o.ID(),
			"token", redact.Token(o.Deferred().Token()),
			"error", err.Error())
		return nil, err
	}

	c.metrics.CheckoutResults.WithLabelValues(o.Method().String(), next.String()).Inc()
	slog.InfoContext(ctx, "deferred payment settled",
		"order_id", o.ID(),
		"token", redact.Token(o.Deferred().Token()),
		"status", next.String())
	return withStatus(o, next, now), nil
}

// PollDeferred reads a charge on behalf of its buyer. Another buyer's token
// reads as not found, like GetByID.
func (c *checkoutCommandsImpl) PollDeferred(ctx context.Context, token string, buyerID uuid.UUID) (*DeferredStatus, error) {
	ctx, span := c.tracer.Start(ctx, "checkout.PollDeferred")
	defer span.End()

	o, err := c.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if o.BuyerID() != buyerID {
		return nil, errs.Wrapf(errs.ErrOrderNotFound, "order %d", o.ID())
	}

	if now := c.clock.Now(); o.IsOverdue(now) {
		o, err = c.expire(ctx, o, now)
		if err != nil {
			return nil, err
		}
	}

	return &DeferredStatus{
		OrderID:     o.ID(),
		Status:      o.Status().String(),
		OrderStatus: o.Status().DisplayStatus(),
		ExpiresAt:   o.Deferred().ExpiresAt(),
		Total:       o.Total(),
	}, nil
}

// expire marks a pending order expired. Losing the race to a concurrent
// transition is fine: the stored terminal state is returned instead.
func (c *checkoutCommandsImpl) expire(ctx context.Context, o *order.Order, now time.Time) (*order.Order, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := transition(ctx, tx, o, order.StatusExpired, now); err != nil {
			return err
		}
		return appendEvent(ctx, tx, withStatus(o, order.StatusExpired, now), now)
	})
	if errs.Is(err, errs.ErrStatusConflict) {
		return c.loadOrder(ctx, o.ID())
	}
	if err != nil {
		return nil, err
	}

	c.metrics.CheckoutResults.WithLabelValues(o.Method().String(), order.StatusExpired.String()).Inc()
	slog.InfoContext(ctx, "deferred payment expired",
		"order_id", o.ID(),
		"token", redact.Token(o.Deferred().Token()),
		"expired_at", o.Deferred().ExpiresAt())
	return withStatus(o, order.StatusExpired, now), nil
}

func transition(ctx context.Context, tx shared.Tx, o *order.Order, next order.PaymentStatus, now time.Time) error {
	err := tx.Orders().UpdateStatusIfCurrent(ctx, o.ID(), order.StatusPending, next, now)
	if err == nil {
		return nil
	}
	if infra.IsKind(err, infra.KindConflict) {
		return errs.Wrapf(errs.ErrStatusConflict, "order %d is no longer pending", o.ID())
	}
	return errs.Mark(err, errs.ErrDatabaseOperationFailed)
}

// withStatus returns a copy so the caller's snapshot stays untouched when the
// unit of work is retried.
func withStatus(o *order.Order, next order.PaymentStatus, now time.Time) *order.Order {
	cp := *o
	_ = cp.Transition(next, now)
	return &cp
}

func (c *checkoutCommandsImpl) findByToken(ctx context.Context, token string) (*order.Order, error) {
	if err := order.ValidateToken(token); err != nil {
		return nil, err
	}
	o, err := c.uow.CommandReads().OrderByDeferredToken(ctx, token)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Wrap(errs.ErrOrderNotFound, "unknown deferred token")
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return o, nil
}

func (c *checkoutCommandsImpl) loadOrder(ctx context.Context, id int64) (*order.Order, error) {
	o, err := c.uow.CommandReads().OrderByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Wrapf(errs.ErrOrderNotFound, "order %d", id)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return o, nil
}

func (c *checkoutCommandsImpl) loadProduct(ctx context.Context, id int64) (*product.Product, error) {
	p, err := c.uow.CommandReads().ProductByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Wrapf(errs.ErrProductNotFound, "product %d", id)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return p, nil
}

func (c *checkoutCommandsImpl) resolveBuyer(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := c.uow.CommandReads().UserByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !u.IsActive() {
		return nil, errs.ErrUserInactive
	}
	if !u.Role().CanPurchase() {
		return nil, errs.Wrapf(errs.ErrPurchaseDenied, "role %s", u.Role())
	}
	return u, nil
}

func (c *checkoutCommandsImpl) viewOf(ctx context.Context, o *order.Order) (*queries.OrderView, error) {
	reads := c.uow.CommandReads()

	var buyer user.Buyer
	u, err := reads.UserByID(ctx, o.BuyerID())
	switch {
	case err == nil:
		buyer = u.Buyer()
	case infra.IsKind(err, infra.KindNotFound):
		buyer = user.Buyer{ID: o.BuyerID()}
	default:
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	var productName string
	p, err := reads.ProductByID(ctx, o.ProductID())
	switch {
	case err == nil:
		productName = p.Name()
	case infra.IsKind(err, infra.KindNotFound):
	default:
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return queries.NewOrderView(o, buyer, productName), nil
}

type orderEventPayload struct {
	OrderID       int64     `json:"order_id"`
	BuyerID       uuid.UUID `json:"buyer_id"`
	ProductID     int64     `json:"product_id"`
	Quantity      int       `json:"quantity"`
	Total         string    `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func appendEvent(ctx context.Context, tx shared.Tx, o *order.Order, at time.Time) error {
	payload, err := json.Marshal(orderEventPayload{
		OrderID:       o.ID(),
		BuyerID:       o.BuyerID(),
		ProductID:     o.ProductID(),
		Quantity:      o.Quantity(),
		Total:         o.Total().StringFixed(2),
		PaymentMethod: o.Method().String(),
		PaymentStatus: o.Status().String(),
		OccurredAt:    at,
	})
	if err != nil {
		return errs.Wrap(err, "failed to encode order event")
	}

	event := shared.OrderEvent{
		ID:        uuid.New(),
		OrderID:   o.ID(),
		Type:      eventType(o.Status()),
		Payload:   payload,
		CreatedAt: at,
	}
	if err := tx.Outbox().Append(ctx, event); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

func eventType(s order.PaymentStatus) string {
	switch s {
	case order.StatusApproved:
		return shared.EventOrderApproved
	case order.StatusFailed:
		return shared.EventOrderFailed
	case order.StatusExpired:
		return shared.EventOrderExpired
	default:
		return shared.EventOrderPending
	}
}

// calculateRequestHash fingerprints a purchase without raw card data.
func calculateRequestHash(buyerID uuid.UUID, productID int64, quantity int, method order.PaymentMethod, card *payment.CardSummary) string {
	fingerprint := struct {
		BuyerID   uuid.UUID `json:"buyer_id"`
		ProductID int64     `json:"product_id"`
		Quantity  int       `json:"quantity"`
		Method    string    `json:"method"`
		CardLast4 string    `json:"card_last4,omitempty"`
		CardBrand string    `json:"card_brand,omitempty"`
	}{
		BuyerID:   buyerID,
		ProductID: productID,
		Quantity:  quantity,
		Method:    method.String(),
	}
	if card != nil {
		fingerprint.CardLast4 = card.Last4
		fingerprint.CardBrand = card.Brand
	}
	data, _ := json.Marshal(fingerprint)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
