package memory

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"gin-checkout-core/internal/domain/order"
	"gin-checkout-core/internal/domain/payment"
	"gin-checkout-core/internal/domain/product"
	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type productRow struct {
	name     string
	price    decimal.Decimal
	discount decimal.Decimal
	stock    int
	version  int64
}

type orderRow struct {
	buyerID         uuid.UUID
	productID       int64
	quantity        int
	unitPrice       decimal.Decimal
	total           decimal.Decimal
	method          order.PaymentMethod
	status          order.PaymentStatus
	token           string
	confirmationRef uuid.UUID
	expiresAt       time.Time
	card            *payment.CardSummary
	createdAt       time.Time
	updatedAt       time.Time
}

type idempotencyKey struct {
	key     string
	buyerID uuid.UUID
}

type userRow struct {
	user      *user.User
	lastLogin *time.Time
}

type state struct {
	products    map[int64]productRow
	orders      map[int64]orderRow
	tokens      map[string]int64
	users       map[uuid.UUID]userRow
	emails      map[string]uuid.UUID
	idempotency map[idempotencyKey]shared.IdempotencyRecord
	// events holds only unpublished events; claims maps a leased event to
	// its lease deadline.
	events []shared.OrderEvent
	claims map[uuid.UUID]time.Time
}

func newState() *state {
	return &state{
		products:    make(map[int64]productRow),
		orders:      make(map[int64]orderRow),
		tokens:      make(map[string]int64),
		users:       make(map[uuid.UUID]userRow),
		emails:      make(map[string]uuid.UUID),
		idempotency: make(map[idempotencyKey]shared.IdempotencyRecord),
		claims:      make(map[uuid.UUID]time.Time),
	}
}

// clone copies every table. Rows are values, so a unit of work can mutate its
// copy freely and is discarded on rollback.
func (s *state) clone() *state {
	return &state{
		products:    maps.Clone(s.products),
		orders:      maps.Clone(s.orders),
		tokens:      maps.Clone(s.tokens),
		users:       maps.Clone(s.users),
		emails:      maps.Clone(s.emails),
		idempotency: maps.Clone(s.idempotency),
		events:      append([]shared.OrderEvent(nil), s.events...),
		claims:      maps.Clone(s.claims),
	}
}

// Store is an in-process ledger and catalog. Units of work run one at a time
// against a private copy that replaces the committed state only on success.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	current *state

	productSeq atomic.Int64
	orderSeq   atomic.Int64
}

func NewStore() *Store {
	return &Store{current: newState()}
}

func (s *Store) committed() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	work := s.committed().clone()
	if err := fn(ctx, &memTx{store: s, st: work}); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = work
	s.mu.Unlock()
	return nil
}

func (s *Store) CommandReads() shared.CommandReads {
	return &reads{st: s.committed()}
}

// SeedProduct inserts a product directly into the committed state.
func (s *Store) SeedProduct(name string, price, discount decimal.Decimal, stock int) int64 {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	id := s.productSeq.Add(1)
	s.mu.Lock()
	work := s.current.clone()
	work.products[id] = productRow{name: name, price: price, discount: discount, stock: stock, version: 1}
	s.current = work
	s.mu.Unlock()
	return id
}

func (s *Store) SeedUser(u *user.User) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	work := s.current.clone()
	work.users[u.ID()] = userRow{user: u, lastLogin: u.LastLogin()}
	work.emails[u.Email().Value()] = u.ID()
	s.current = work
	s.mu.Unlock()
}

// Stock reports the committed stock level, or -1 for an unknown product.
func (s *Store) Stock(productID int64) int {
	row, ok := s.committed().products[productID]
	if !ok {
		return -1
	}
	return row.stock
}

func (s *Store) OrderCount() int {
	return len(s.committed().orders)
}

// Events returns the events not yet published.
func (s *Store) Events() []shared.OrderEvent {
	return append([]shared.OrderEvent(nil), s.committed().events...)
}

type memTx struct {
	store *Store
	st    *state
}

func (t *memTx) Catalog() shared.CatalogRepository         { return &catalogRepo{st: t.st} }
func (t *memTx) Orders() shared.OrderRepository            { return &orderRepo{st: t.st, seq: &t.store.orderSeq} }
func (t *memTx) Idempotency() shared.IdempotencyRepository { return &idempotencyRepo{st: t.st} }
func (t *memTx) Outbox() shared.OutboxRepository           { return &outboxRepo{st: t.st} }
func (t *memTx) Users() shared.UserRepository              { return &userRepo{st: t.st} }
func (t *memTx) Reads() shared.CommandReads                { return &reads{st: t.st} }

func (r orderRow) toDomain(id int64) *order.Order {
	var deferred *order.DeferredCharge
	if r.method == order.MethodDeferredCode {
		d := order.NewDeferredCharge(r.token, r.confirmationRef, r.expiresAt)
		deferred = &d
	}
	var card *payment.CardSummary
	if r.card != nil {
		c := *r.card
		card = &c
	}
	return order.ReconstructOrder(
		id, r.buyerID, r.productID, r.quantity,
		r.unitPrice, r.total,
		r.method, r.status,
		deferred, card,
		r.createdAt, r.updatedAt,
	)
}

func (r productRow) toDomain(id int64) *product.Product {
	return product.ReconstructProduct(id, r.name, r.price, r.discount, r.stock, r.version)
}
