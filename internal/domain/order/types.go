package order

import (
	"math"

	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/internal/pkg/ptr"
)

type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodBoleto       PaymentMethod = "boleto"
	MethodDeferredCode PaymentMethod = "deferred_code"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	switch m {
	case MethodCard, MethodBoleto, MethodDeferredCode:
		return m, nil
	default:
		return "", errs.Wrapf(errs.ErrInvalidPaymentMethod, "unsupported method %q", s)
	}
}

func (m PaymentMethod) String() string {
	return string(m)
}

// SettlesImmediately reports whether the method reserves stock and approves in
// the same unit of work that creates the order.
func (m PaymentMethod) SettlesImmediately() bool {
	return m == MethodCard || m == MethodBoleto
}

type PaymentStatus string

const (
	StatusPending  PaymentStatus = "pending"
	StatusApproved PaymentStatus = "approved"
	StatusFailed   PaymentStatus = "failed"
	StatusExpired  PaymentStatus = "expired"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusFailed, StatusExpired:
		return true
	default:
		return false
	}
}

func (s PaymentStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusFailed || s == StatusExpired
}

// CanTransitionTo encodes pending -> {approved, failed, expired}. Nothing leaves
// a terminal state.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == StatusPending && next.IsTerminal()
}

// DisplayStatus is the coarse order label shown to clients. It is derived and
// never stored.
func (s PaymentStatus) DisplayStatus() string {
	switch s {
	case StatusPending:
		return "processing"
	case StatusApproved:
		return "confirmed"
	case StatusFailed, StatusExpired:
		return "canceled"
	default:
		return "unknown"
	}
}

// MaxQuantity is the largest quantity the ledger's INTEGER columns hold.
const MaxQuantity = math.MaxInt32

// NormalizeQuantity applies the default of one unit and rejects quantities
// outside [1, MaxQuantity] before anything else happens.
func NormalizeQuantity(q *int) (int, error) {
	quantity := ptr.ValueOr(q, 1)
	if quantity < 1 || quantity > MaxQuantity {
		return 0, errs.Wrapf(errs.ErrInvalidQuantity, "got %d", quantity)
	}
	return quantity, nil
}
