package commands

import (
	"context"
	"log/slog"
	"time"

	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/infra"
	"gin-checkout-core/internal/pkg/clock"
	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/internal/pkg/jwt"
	"gin-checkout-core/internal/pkg/password"
	"gin-checkout-core/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errs.New("invalid credentials")
	ErrTokenGeneration    = errs.New("token generation failed")
)

type LoginResult struct {
	UserID      uuid.UUID
	Role        user.Role
	AccessToken string
	ExpiresIn   time.Duration
}

//go:generate mockgen -source=auth.go -destination=../../../tests/mock/commands/auth.go -package=commandsmock
type AuthCommands interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
}

type authCommandsImpl struct {
	uow        shared.UnitOfWork
	jwtService *jwt.Service
	clock      clock.Clock
}

func NewAuthCommands(uow shared.UnitOfWork, jwtService *jwt.Service, clock clock.Clock) AuthCommands {
	return &authCommandsImpl{
		uow:        uow,
		jwtService: jwtService,
		clock:      clock,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	credentials, err := user.NewCredentials(in.Email, in.Password)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidCredentials)
	}

	usr, err := a.validateUser(ctx, credentials)
	if err != nil {
		return nil, err
	}

	accessToken, err := a.jwtService.GenerateToken(usr.ID(), usr.Role())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().UpdateLastLogin(ctx, usr.ID(), a.clock.Now())
	})
	if err != nil {
		// login already succeeded; last_login is informational
		slog.WarnContext(ctx, "failed to update last login", "user_id", usr.ID(), "error", err.Error())
	}

	return &LoginResult{
		UserID:      usr.ID(),
		Role:        usr.Role(),
		AccessToken: accessToken,
		ExpiresIn:   a.jwtService.TokenDuration(),
	}, nil
}

func (a *authCommandsImpl) validateUser(ctx context.Context, credentials user.Credentials) (*user.User, error) {
	usr, err := a.uow.CommandReads().UserByEmail(ctx, credentials.Email().Value())
	if err != nil {
		if !infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		// Same bcrypt cost and error as a wrong password, so unknown emails look alike.
		_ = password.Verify("", credentials.Password())
		return nil, ErrInvalidCredentials
	}

	if err := password.Verify(usr.PasswordHash(), credentials.Password()); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !usr.IsActive() {
		return nil, errs.ErrUserInactive
	}

	return usr, nil
}
