package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidName = errors.New("name must be between 1 and 100 characters")

type User struct {
	id           uuid.UUID
	name         string
	email        Email
	passwordHash string
	role         Role
	isActive     bool
	lastLogin    *time.Time
}

func NewUser(name string, email Email, passwordHash string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > 100 {
		return nil, ErrInvalidName
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	return &User{
		id:           uuid.New(),
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		isActive:     true,
	}, nil
}

func ReconstructUser(id uuid.UUID, name string, email Email, passwordHash string, role Role, isActive bool, lastLogin *time.Time) *User {
	return &User{
		id:           id,
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		isActive:     isActive,
		lastLogin:    lastLogin,
	}
}

func (u *User) ID() uuid.UUID         { return u.id }
func (u *User) Name() string          { return u.name }
func (u *User) Email() Email          { return u.email }
func (u *User) PasswordHash() string  { return u.passwordHash }
func (u *User) Role() Role            { return u.role }
func (u *User) IsActive() bool        { return u.isActive }
func (u *User) LastLogin() *time.Time { return u.lastLogin }

func (u *User) RecordLogin(at time.Time) {
	u.lastLogin = &at
}

// Buyer reduces the user to the fields that may leave the service.
func (u *User) Buyer() Buyer {
	return Buyer{ID: u.id, Name: u.name, Email: u.email.Value()}
}

type Buyer struct {
	ID    uuid.UUID
	Name  string
	Email string
}
