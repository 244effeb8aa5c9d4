package repository

import (
	"context"
	"slices"
	"strings"
	"time"

	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/infra/db"
	"gin-checkout-core/internal/pkg/pgconv"
	"gin-checkout-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	insertOrderEvent = `
		INSERT INTO order_events (id, order_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	// The lease outlives the claiming transaction, so publishing happens with
	// no row locks held. SKIP LOCKED keeps concurrent claims disjoint.
	claimOrderEvents = `
		UPDATE order_events SET claimed_until = $3
		WHERE id IN (
			SELECT id
			FROM order_events
			WHERE published_at IS NULL
			  AND (claimed_until IS NULL OR claimed_until <= $2)
			ORDER BY created_at, id
			LIMIT $1
			FOR UPDATE SKIP LOCKED)
		RETURNING id, order_id, event_type, payload, created_at, published_at`

	markOrderEventsPublished = `
		UPDATE order_events SET published_at = $2, claimed_until = NULL WHERE id = ANY($1)`
)

type OutboxRepository struct {
	db db.DBTX
}

func NewOutboxRepository(db db.DBTX) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Append(ctx context.Context, event shared.OrderEvent) error {
	_, err := r.db.Exec(ctx, insertOrderEvent, event.ID, event.OrderID, event.Type, event.Payload, event.CreatedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to append order event", err)
	}
	return nil
}

func (r *OutboxRepository) ClaimBatch(ctx context.Context, limit int, now, leaseUntil time.Time) ([]shared.OrderEvent, error) {
	rows, err := r.db.Query(ctx, claimOrderEvents, limit, now, leaseUntil)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim order events", err)
	}
	defer rows.Close()

	var events []shared.OrderEvent
	for rows.Next() {
		var (
			e           shared.OrderEvent
			publishedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Type, &e.Payload, &e.CreatedAt, &publishedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order event", err)
		}
		e.PublishedAt = pgconv.TimePtrFromPgtype(publishedAt)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order events", err)
	}
	// RETURNING does not keep the subquery order
	slices.SortFunc(events, func(a, b shared.OrderEvent) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return events, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, markOrderEventsPublished, ids, at); err != nil {
		return infra.WrapRepoErr("failed to mark order events published", err)
	}
	return nil
}
