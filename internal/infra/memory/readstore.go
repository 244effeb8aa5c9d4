package memory

import (
	"context"

	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/usecase/queries"

	"github.com/google/uuid"
)

// ReadStore serves the query side from the committed state.
type ReadStore struct {
	store *Store
}

func NewReadStore(store *Store) *ReadStore {
	return &ReadStore{store: store}
}

func (r *ReadStore) FindByID(ctx context.Context, id int64) (*queries.OrderView, error) {
	st := r.store.committed()
	row, ok := st.orders[id]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return viewOf(st, id, row), nil
}

func (r *ReadStore) FindByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]*queries.OrderView, error) {
	st := r.store.committed()
	ids := sortedOrderIDs(st.orders, func(row orderRow) bool { return row.buyerID == buyerID })
	if offset >= len(ids) {
		return []*queries.OrderView{}, nil
	}
	ids = ids[offset:]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	views := make([]*queries.OrderView, 0, len(ids))
	for _, id := range ids {
		views = append(views, viewOf(st, id, st.orders[id]))
	}
	return views, nil
}

// UserReadStore adapts the store to queries.UserReadStore.
type UserReadStore struct {
	store *Store
}

func NewUserReadStore(store *Store) *UserReadStore {
	return &UserReadStore{store: store}
}

func (r *UserReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	row, ok := r.store.committed().users[id]
	if !ok {
		return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	u := row.user
	return &queries.AuthorizedUserView{
		ID:       u.ID(),
		Name:     u.Name(),
		Email:    u.Email().Value(),
		Role:     u.Role().String(),
		IsActive: u.IsActive(),
	}, nil
}

func viewOf(st *state, id int64, row orderRow) *queries.OrderView {
	buyer := user.Buyer{ID: row.buyerID}
	if u, ok := st.users[row.buyerID]; ok {
		buyer = u.user.Buyer()
	}
	return queries.NewOrderView(row.toDomain(id), buyer, st.products[row.productID].name)
}
