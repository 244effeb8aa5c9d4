package memory

import (
	"context"
	"slices"
	"sort"
	"sync/atomic"
	"time"

	"gin-checkout-core/internal/domain/order"
	"gin-checkout-core/internal/domain/product"
	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type catalogRepo struct {
	st *state
}

func (r *catalogRepo) DecrementIfAvailable(_ context.Context, productID int64, quantity int) (int, bool, error) {
	row, ok := r.st.products[productID]
	if !ok || row.stock < quantity {
		return 0, false, nil
	}
	row.stock -= quantity
	row.version++
	r.st.products[productID] = row
	return row.stock, true, nil
}

func (r *catalogRepo) StockVersion(_ context.Context, productID int64) (int, int64, error) {
	row, ok := r.st.products[productID]
	if !ok {
		return 0, 0, infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	return row.stock, row.version, nil
}

func (r *catalogRepo) CompareAndSetStock(_ context.Context, productID int64, expectedVersion int64, newStock int) (bool, error) {
	row, ok := r.st.products[productID]
	if !ok || row.version != expectedVersion || newStock < 0 {
		return false, nil
	}
	row.stock = newStock
	row.version++
	r.st.products[productID] = row
	return true, nil
}

func (r *catalogRepo) Exists(_ context.Context, productID int64) (bool, error) {
	_, ok := r.st.products[productID]
	return ok, nil
}

type orderRepo struct {
	st  *state
	seq *atomic.Int64
}

func (r *orderRepo) Create(_ context.Context, o *order.Order) (*order.Order, error) {
	if _, ok := r.st.products[o.ProductID()]; !ok {
		return nil, infra.WrapRepoErr("order references unknown product", nil, infra.KindForeignKeyViolated)
	}

	row := orderRow{
		buyerID:   o.BuyerID(),
		productID: o.ProductID(),
		quantity:  o.Quantity(),
		unitPrice: o.UnitPrice(),
		total:     o.Total(),
		method:    o.Method(),
		status:    o.Status(),
		card:      o.Card(),
		createdAt: o.CreatedAt(),
		updatedAt: o.UpdatedAt(),
	}
	if d := o.Deferred(); d != nil {
		if _, dup := r.st.tokens[d.Token()]; dup {
			return nil, infra.WrapRepoErr("deferred token already exists", nil, infra.KindDuplicateKey)
		}
		row.token = d.Token()
		row.confirmationRef = d.ConfirmationRef()
		row.expiresAt = d.ExpiresAt()
	}

	// Sequence values are not returned on rollback, same as a database sequence.
	id := r.seq.Add(1)
	r.st.orders[id] = row
	if row.token != "" {
		r.st.tokens[row.token] = id
	}
	return row.toDomain(id), nil
}

func (r *orderRepo) UpdateStatusIfCurrent(_ context.Context, orderID int64, expected, next order.PaymentStatus, at time.Time) error {
	row, ok := r.st.orders[orderID]
	if !ok {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	if row.status != expected {
		return infra.WrapRepoErr("order status changed", nil, infra.KindConflict)
	}
	row.status = next
	row.updatedAt = at
	r.st.orders[orderID] = row
	return nil
}

type idempotencyRepo struct {
	st *state
}

func (r *idempotencyRepo) TryInsert(_ context.Context, key string, buyerID uuid.UUID, requestHash string, expiresAt time.Time) (bool, error) {
	k := idempotencyKey{key: key, buyerID: buyerID}
	if _, exists := r.st.idempotency[k]; exists {
		return false, nil
	}
	r.st.idempotency[k] = shared.IdempotencyRecord{
		Key:         key,
		BuyerID:     buyerID,
		Status:      shared.IdempotencyStatusProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r *idempotencyRepo) Complete(_ context.Context, key string, buyerID uuid.UUID, orderID int64) error {
	k := idempotencyKey{key: key, buyerID: buyerID}
	rec, ok := r.st.idempotency[k]
	if !ok {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	rec.Status = shared.IdempotencyStatusCompleted
	rec.OrderID = &orderID
	r.st.idempotency[k] = rec
	return nil
}

func (r *idempotencyRepo) ClaimExpired(_ context.Context, key string, buyerID uuid.UUID, requestHash string, now, expiresAt time.Time) (bool, error) {
	k := idempotencyKey{key: key, buyerID: buyerID}
	rec, ok := r.st.idempotency[k]
	if !ok || !now.After(rec.ExpiresAt) {
		return false, nil
	}
	r.st.idempotency[k] = shared.IdempotencyRecord{
		Key:         key,
		BuyerID:     buyerID,
		Status:      shared.IdempotencyStatusProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

type outboxRepo struct {
	st *state
}

func (r *outboxRepo) Append(_ context.Context, event shared.OrderEvent) error {
	r.st.events = append(r.st.events, event)
	return nil
}

func (r *outboxRepo) ClaimBatch(_ context.Context, limit int, now, leaseUntil time.Time) ([]shared.OrderEvent, error) {
	var batch []shared.OrderEvent
	for _, e := range r.st.events {
		if until, ok := r.st.claims[e.ID]; ok && until.After(now) {
			continue
		}
		r.st.claims[e.ID] = leaseUntil
		batch = append(batch, e)
		if len(batch) == limit {
			break
		}
	}
	return batch, nil
}

// MarkPublished drops the events, so the outbox only ever holds what is left
// to send.
func (r *outboxRepo) MarkPublished(_ context.Context, ids []uuid.UUID, _ time.Time) error {
	published := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		published[id] = struct{}{}
		delete(r.st.claims, id)
	}
	r.st.events = slices.DeleteFunc(r.st.events, func(e shared.OrderEvent) bool {
		_, ok := published[e.ID]
		return ok
	})
	return nil
}

type userRepo struct {
	st *state
}

func (r *userRepo) UpdateLastLogin(_ context.Context, userID uuid.UUID, at time.Time) error {
	row, ok := r.st.users[userID]
	if !ok {
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	row.lastLogin = &at
	r.st.users[userID] = row
	return nil
}

type reads struct {
	st *state
}

func (r *reads) ProductByID(_ context.Context, id int64) (*product.Product, error) {
	row, ok := r.st.products[id]
	if !ok {
		return nil, infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	return row.toDomain(id), nil
}

func (r *reads) OrderByID(_ context.Context, id int64) (*order.Order, error) {
	row, ok := r.st.orders[id]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return row.toDomain(id), nil
}

func (r *reads) OrderByDeferredToken(ctx context.Context, token string) (*order.Order, error) {
	id, ok := r.st.tokens[token]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return r.OrderByID(ctx, id)
}

func (r *reads) UserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	row, ok := r.st.users[id]
	if !ok {
		return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return row.withLastLogin(), nil
}

func (r *reads) UserByEmail(ctx context.Context, email string) (*user.User, error) {
	id, ok := r.st.emails[email]
	if !ok {
		return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return r.UserByID(ctx, id)
}

func (r *reads) IdempotencyByKey(_ context.Context, key string, buyerID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := r.st.idempotency[idempotencyKey{key: key, buyerID: buyerID}]
	if !ok {
		return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return &rec, nil
}

func (u userRow) withLastLogin() *user.User {
	return user.ReconstructUser(u.user.ID(), u.user.Name(), u.user.Email(), u.user.PasswordHash(), u.user.Role(), u.user.IsActive(), u.lastLogin)
}

func sortedOrderIDs(orders map[int64]orderRow, keep func(orderRow) bool) []int64 {
	ids := make([]int64, 0, len(orders))
	for id, row := range orders {
		if keep(row) {
			ids = append(ids, id)
		}
	}
	// newest first, matching the SQL read store
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids
}
