package usecase

import (
	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/internal/pkg/jwt"

	"github.com/google/uuid"
)

// Principal is the caller an access token vouches for.
type Principal struct {
	UserID uuid.UUID
	Role   user.Role
}

type TokenValidator interface {
	ValidateToken(tokenString string) (Principal, error)
}

type jwtTokenValidator struct {
	tokens *jwt.Service
}

func NewTokenValidator(tokens *jwt.Service) TokenValidator {
	return &jwtTokenValidator{tokens: tokens}
}

// ValidateToken fails with jwt.ErrExpiredToken or jwt.ErrInvalidToken; an
// unknown role counts as invalid.
func (v *jwtTokenValidator) ValidateToken(tokenString string) (Principal, error) {
	claims, err := v.tokens.ValidateToken(tokenString)
	if err != nil {
		return Principal{}, err
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return Principal{}, errs.Mark(err, jwt.ErrInvalidToken)
	}

	return Principal{UserID: claims.UserID, Role: role}, nil
}
