package queries

import (
	"context"

	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/pkg/errs"

	"github.com/google/uuid"
)

//go:generate mockgen -source=user.go -destination=../../../tests/mock/queries/user.go -package=queriesmock
type UserQueries interface {
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*AuthorizedUserView, error)
}

type UserReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AuthorizedUserView, error)
}

type userQueries struct {
	users UserReadStore
}

func NewUserQueries(users UserReadStore) UserQueries {
	return &userQueries{users: users}
}

// GetCurrentUser resolves the caller of a still valid token. A user removed or
// deactivated after the token was issued is rejected here.
func (q *userQueries) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*AuthorizedUserView, error) {
	view, err := q.users.FindByID(ctx, userID)
	switch {
	case infra.IsKind(err, infra.KindNotFound):
		return nil, errs.ErrUserNotFound
	case err != nil:
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	case !view.IsActive:
		return nil, errs.ErrUserInactive
	}
	return view, nil
}
