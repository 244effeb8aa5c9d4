package shared

import (
	"context"
	"time"

	"gin-checkout-core/internal/domain/order"
	"gin-checkout-core/internal/domain/product"
	"gin-checkout-core/internal/domain/user"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Catalog() CatalogRepository
	Orders() OrderRepository
	Idempotency() IdempotencyRepository
	Outbox() OutboxRepository
	Users() UserRepository
	Reads() CommandReads
}

type CommandReads interface {
	ProductByID(ctx context.Context, id int64) (*product.Product, error)
	OrderByID(ctx context.Context, id int64) (*order.Order, error)
	OrderByDeferredToken(ctx context.Context, token string) (*order.Order, error)
	UserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	UserByEmail(ctx context.Context, email string) (*user.User, error)
	IdempotencyByKey(ctx context.Context, key string, buyerID uuid.UUID) (*IdempotencyRecord, error)
}

// CatalogRepository is the only write path to product stock.
type CatalogRepository interface {
	// DecrementIfAvailable subtracts quantity only when enough stock remains.
	// ok is false when the product is missing or short; nothing is written then.
	DecrementIfAvailable(ctx context.Context, productID int64, quantity int) (remaining int, ok bool, err error)
	// StockVersion returns the stock level and its write version.
	StockVersion(ctx context.Context, productID int64) (stock int, version int64, err error)
	// CompareAndSetStock writes newStock only if the version is unchanged.
	CompareAndSetStock(ctx context.Context, productID int64, expectedVersion int64, newStock int) (bool, error)
	Exists(ctx context.Context, productID int64) (bool, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) (*order.Order, error)
	// UpdateStatusIfCurrent fails with a conflict when the stored status is not expected.
	UpdateStatusIfCurrent(ctx context.Context, orderID int64, expected, next order.PaymentStatus, at time.Time) error
}

type IdempotencyRepository interface {
	// TryInsert claims the key. inserted is false when the key already exists.
	TryInsert(ctx context.Context, key string, buyerID uuid.UUID, requestHash string, expiresAt time.Time) (inserted bool, err error)
	Complete(ctx context.Context, key string, buyerID uuid.UUID, orderID int64) error
	// ClaimExpired takes over a key whose previous claim has lapsed.
	ClaimExpired(ctx context.Context, key string, buyerID uuid.UUID, requestHash string, now, expiresAt time.Time) (bool, error)
}

type OutboxRepository interface {
	Append(ctx context.Context, event OrderEvent) error
	// ClaimBatch leases up to limit unpublished events, oldest first, until
	// leaseUntil. Events under a live lease at now are skipped.
	ClaimBatch(ctx context.Context, limit int, now, leaseUntil time.Time) ([]OrderEvent, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

type UserRepository interface {
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}
