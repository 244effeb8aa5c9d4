package inventory

import (
	"context"
	"log/slog"

	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/internal/pkg/telemetry"
	"gin-checkout-core/internal/usecase/shared"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "gin-checkout-core/inventory"

const (
	outcomeReserved     = "reserved"
	outcomeInsufficient = "insufficient_stock"
	outcomeNotFound     = "not_found"
	outcomeConflict     = "conflict"
	outcomeError        = "error"
)

type Reservation struct {
	ProductID      int64
	Quantity       int
	RemainingStock int
}

// Engine is the only component allowed to decrement stock. Reserve must be
// called inside the unit of work that persists the matching order so a later
// failure rolls the decrement back.
type Engine interface {
	Reserve(ctx context.Context, tx shared.Tx, productID int64, quantity int) (*Reservation, error)
}

type engine struct {
	strategy   string
	maxRetries int
	metrics    *telemetry.Metrics
	tracer     trace.Tracer
}

func NewEngine(cfg config.CheckoutConfig, metrics *telemetry.Metrics) Engine {
	maxRetries := cfg.InventoryCASMaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	strategy := cfg.InventoryStrategy
	if strategy == "" {
		strategy = config.InventoryStrategyAtomic
	}
	return &engine{
		strategy:   strategy,
		maxRetries: maxRetries,
		metrics:    metrics,
		tracer:     otel.Tracer(tracerName),
	}
}

func (e *engine) Reserve(ctx context.Context, tx shared.Tx, productID int64, quantity int) (*Reservation, error) {
	if quantity < 1 {
		return nil, errs.Wrapf(errs.ErrInvalidQuantity, "got %d", quantity)
	}

	ctx, span := e.tracer.Start(ctx, "inventory.Reserve", trace.WithAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int("reservation.quantity", quantity),
		attribute.String("inventory.strategy", e.strategy),
	))
	defer span.End()

	var (
		res *Reservation
		err error
	)
	switch e.strategy {
	case config.InventoryStrategyCAS:
		res, err = e.reserveCAS(ctx, tx.Catalog(), productID, quantity)
	default:
		res, err = e.reserveAtomic(ctx, tx.Catalog(), productID, quantity)
	}

	outcome := classify(err)
	e.metrics.ReservationResults.WithLabelValues(e.strategy, outcome).Inc()
	span.SetAttributes(attribute.String("inventory.outcome", outcome))
	if err != nil {
		if outcome == outcomeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reservation failed")
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int("inventory.remaining", res.RemainingStock))
	return res, nil
}

// reserveAtomic issues one conditional decrement. The existence read afterwards
// only explains a refusal; it never decides whether to write.
func (e *engine) reserveAtomic(ctx context.Context, catalog shared.CatalogRepository, productID int64, quantity int) (*Reservation, error) {
	remaining, ok, err := catalog.DecrementIfAvailable(ctx, productID, quantity)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if ok {
		return &Reservation{ProductID: productID, Quantity: quantity, RemainingStock: remaining}, nil
	}

	exists, err := catalog.Exists(ctx, productID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !exists {
		return nil, errs.Wrapf(errs.ErrProductNotFound, "product %d", productID)
	}
	return nil, errs.Wrapf(errs.ErrInsufficientStock, "product %d: requested %d", productID, quantity)
}

func (e *engine) reserveCAS(ctx context.Context, catalog shared.CatalogRepository, productID int64, quantity int) (*Reservation, error) {
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		stock, version, err := catalog.StockVersion(ctx, productID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, errs.Wrapf(errs.ErrProductNotFound, "product %d", productID)
			}
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if stock < quantity {
			e.metrics.CASRetries.Observe(float64(attempt))
			return nil, errs.Wrapf(errs.ErrInsufficientStock, "product %d: requested %d, available %d", productID, quantity, stock)
		}

		swapped, err := catalog.CompareAndSetStock(ctx, productID, version, stock-quantity)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if swapped {
			e.metrics.CASRetries.Observe(float64(attempt))
			return &Reservation{ProductID: productID, Quantity: quantity, RemainingStock: stock - quantity}, nil
		}

		slog.DebugContext(ctx, "stock version moved, retrying reservation",
			"product_id", productID,
			"attempt", attempt,
			"version", version)
	}

	e.metrics.CASRetries.Observe(float64(e.maxRetries))
	return nil, errs.Wrapf(errs.ErrReservationConflict, "product %d after %d attempts", productID, e.maxRetries)
}

func classify(err error) string {
	switch {
	case err == nil:
		return outcomeReserved
	case errs.Is(err, errs.ErrInsufficientStock):
		return outcomeInsufficient
	case errs.Is(err, errs.ErrProductNotFound):
		return outcomeNotFound
	case errs.Is(err, errs.ErrReservationConflict):
		return outcomeConflict
	default:
		return outcomeError
	}
}
