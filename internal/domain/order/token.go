package order

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"time"

	"gin-checkout-core/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	tokenBytes = 32
	// TokenLength is the encoded length of a deferred token (unpadded base64url of 32 bytes).
	TokenLength = 43
)

type DeferredCharge struct {
	token           string
	confirmationRef uuid.UUID
	expiresAt       time.Time
}

func NewDeferredCharge(token string, confirmationRef uuid.UUID, expiresAt time.Time) DeferredCharge {
	return DeferredCharge{token: token, confirmationRef: confirmationRef, expiresAt: expiresAt}
}

func (d DeferredCharge) Token() string              { return d.token }
func (d DeferredCharge) ConfirmationRef() uuid.UUID { return d.confirmationRef }
func (d DeferredCharge) ExpiresAt() time.Time       { return d.expiresAt }

// IsExpiredAt is strict: a confirmation landing exactly on the deadline still counts.
func (d DeferredCharge) IsExpiredAt(now time.Time) bool {
	return now.After(d.expiresAt)
}

type TokenGenerator interface {
	NewCharge(now time.Time, ttl time.Duration) (DeferredCharge, error)
}

type RandomTokenGenerator struct {
	reader io.Reader
}

func NewRandomTokenGenerator() *RandomTokenGenerator {
	return &RandomTokenGenerator{reader: rand.Reader}
}

func (g *RandomTokenGenerator) NewCharge(now time.Time, ttl time.Duration) (DeferredCharge, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(g.reader, buf); err != nil {
		return DeferredCharge{}, errs.Wrap(err, "failed to read token entropy")
	}
	ref, err := uuid.NewRandom()
	if err != nil {
		return DeferredCharge{}, errs.Wrap(err, "failed to generate confirmation reference")
	}
	return DeferredCharge{
		token:           base64.RawURLEncoding.EncodeToString(buf),
		confirmationRef: ref,
		expiresAt:       now.Add(ttl),
	}, nil
}

// ValidateToken rejects anything that could not have come from the generator.
func ValidateToken(token string) error {
	if len(token) != TokenLength {
		return errs.Wrapf(errs.ErrMalformedToken, "expected %d characters, got %d", TokenLength, len(token))
	}
	if _, err := base64.RawURLEncoding.DecodeString(token); err != nil {
		return errs.Wrap(errs.ErrMalformedToken, "not base64url")
	}
	return nil
}
