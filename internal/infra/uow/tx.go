package uow

import (
	"gin-checkout-core/internal/infra/db"
	"gin-checkout-core/internal/infra/readstore"
	"gin-checkout-core/internal/infra/repository"
	"gin-checkout-core/internal/usecase/shared"
)

// pgTx hands out repositories bound to one transaction. Each is built on
// first use and reused for the rest of the unit.
type pgTx struct {
	dbtx db.DBTX

	catalog     shared.CatalogRepository
	orders      shared.OrderRepository
	idempotency shared.IdempotencyRepository
	outbox      shared.OutboxRepository
	users       shared.UserRepository
	reads       shared.CommandReads
}

func newPgTx(dbtx db.DBTX) *pgTx {
	return &pgTx{dbtx: dbtx}
}

func memo[T comparable](slot *T, build func() T) T {
	var zero T
	if *slot == zero {
		*slot = build()
	}
	return *slot
}

func (t *pgTx) Catalog() shared.CatalogRepository {
	return memo(&t.catalog, func() shared.CatalogRepository { return repository.NewCatalogRepository(t.dbtx) })
}

func (t *pgTx) Orders() shared.OrderRepository {
	return memo(&t.orders, func() shared.OrderRepository { return repository.NewOrderRepository(t.dbtx) })
}

func (t *pgTx) Idempotency() shared.IdempotencyRepository {
	return memo(&t.idempotency, func() shared.IdempotencyRepository { return repository.NewIdempotencyRepository(t.dbtx) })
}

func (t *pgTx) Outbox() shared.OutboxRepository {
	return memo(&t.outbox, func() shared.OutboxRepository { return repository.NewOutboxRepository(t.dbtx) })
}

func (t *pgTx) Users() shared.UserRepository {
	return memo(&t.users, func() shared.UserRepository { return repository.NewUserRepository(t.dbtx) })
}

func (t *pgTx) Reads() shared.CommandReads {
	return memo(&t.reads, func() shared.CommandReads { return readstore.NewCommandReads(t.dbtx) })
}
