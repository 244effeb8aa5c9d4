package converter

import (
	"time"

	"gin-checkout-core/internal/domain/order"
	"gin-checkout-core/internal/domain/payment"
	"gin-checkout-core/internal/domain/product"
	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/pkg/pgconv"
	"gin-checkout-core/internal/pkg/ptr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Numeric columns are selected as text so decimals keep their stored scale.
const (
	OrderColumns = `o.id, o.buyer_id, o.product_id, o.quantity, o.unit_price::text, o.total::text,
		o.payment_method, o.payment_status, o.deferred_token, o.deferred_expires_at, o.confirmation_ref,
		o.card_last4, o.card_brand, o.created_at, o.updated_at`

	ProductColumns = `p.id, p.name, p.price::text, p.discount::text, p.stock, p.version`

	UserColumns = `u.id, u.name, u.email, u.password_hash, u.role, u.is_active, u.last_login`
)

type orderRow struct {
	id              int64
	buyerID         uuid.UUID
	productID       int64
	quantity        int32
	unitPrice       string
	total           string
	method          string
	status          string
	token           pgtype.Text
	expiresAt       pgtype.Timestamptz
	confirmationRef pgtype.UUID
	cardLast4       pgtype.Text
	cardBrand       pgtype.Text
	createdAt       time.Time
	updatedAt       time.Time
}

// targets lists scan destinations in OrderColumns order.
func (r *orderRow) targets() []any {
	return []any{
		&r.id, &r.buyerID, &r.productID, &r.quantity, &r.unitPrice, &r.total,
		&r.method, &r.status, &r.token, &r.expiresAt, &r.confirmationRef,
		&r.cardLast4, &r.cardBrand, &r.createdAt, &r.updatedAt,
	}
}

func ScanOrder(row pgx.Row, extra ...any) (*order.Order, error) {
	var r orderRow
	if err := row.Scan(append(r.targets(), extra...)...); err != nil {
		return nil, err
	}
	return r.toDomain()
}

func (r *orderRow) toDomain() (*order.Order, error) {
	unitPrice, err := pgconv.DecimalFromText(r.unitPrice)
	if err != nil {
		return nil, err
	}
	total, err := pgconv.DecimalFromText(r.total)
	if err != nil {
		return nil, err
	}

	var deferred *order.DeferredCharge
	if r.token.Valid {
		ref := pgconv.UUIDPtrFromPgtype(r.confirmationRef)
		var confirmationRef uuid.UUID
		if ref != nil {
			confirmationRef = *ref
		}
		d := order.NewDeferredCharge(r.token.String, confirmationRef, r.expiresAt.Time)
		deferred = &d
	}

	var card *payment.CardSummary
	if r.cardLast4.Valid {
		card = &payment.CardSummary{Last4: r.cardLast4.String, Brand: r.cardBrand.String}
	}

	return order.ReconstructOrder(
		r.id, r.buyerID, r.productID, int(r.quantity),
		unitPrice, total,
		order.PaymentMethod(r.method), order.PaymentStatus(r.status),
		deferred, card,
		r.createdAt, r.updatedAt,
	), nil
}

// OrderInsertArgs returns the positional arguments for an orders INSERT in
// column order: buyer_id .. updated_at.
func OrderInsertArgs(o *order.Order) []any {
	var (
		token     *string
		expiresAt *time.Time
		ref       *uuid.UUID
		last4     *string
		brand     *string
	)
	if d := o.Deferred(); d != nil {
		token, expiresAt, ref = ptr.To(d.Token()), ptr.To(d.ExpiresAt()), ptr.To(d.ConfirmationRef())
	}
	if c := o.Card(); c != nil {
		last4, brand = ptr.To(c.Last4), ptr.To(c.Brand)
	}
	return []any{
		o.BuyerID(),
		o.ProductID(),
		o.Quantity(),
		o.UnitPrice().String(),
		o.Total().String(),
		o.Method().String(),
		o.Status().String(),
		pgconv.StringPtrToPgtype(token),
		expiresAt,
		pgconv.UUIDPtrToPgtype(ref),
		pgconv.StringPtrToPgtype(last4),
		pgconv.StringPtrToPgtype(brand),
		o.CreatedAt(),
		o.UpdatedAt(),
	}
}

func ScanProduct(row pgx.Row) (*product.Product, error) {
	var (
		id              int64
		name            string
		price, discount string
		stock           int32
		version         int64
	)
	if err := row.Scan(&id, &name, &price, &discount, &stock, &version); err != nil {
		return nil, err
	}
	p, err := pgconv.DecimalFromText(price)
	if err != nil {
		return nil, err
	}
	d, err := pgconv.DecimalFromText(discount)
	if err != nil {
		return nil, err
	}
	return product.ReconstructProduct(id, name, p, d, int(stock), version), nil
}

func ScanUser(row pgx.Row) (*user.User, error) {
	var (
		id           uuid.UUID
		name         string
		email        string
		passwordHash string
		role         string
		isActive     bool
		lastLogin    pgtype.Timestamptz
	)
	if err := row.Scan(&id, &name, &email, &passwordHash, &role, &isActive, &lastLogin); err != nil {
		return nil, err
	}
	e, err := user.NewEmail(email)
	if err != nil {
		return nil, err
	}
	return user.ReconstructUser(id, name, e, passwordHash, user.Role(role), isActive, pgconv.TimePtrFromPgtype(lastLogin)), nil
}
