package usecase

import (
	"context"

	"medchain/internal/domain/entity"
)

// RegisterInput is the sign-up form
type RegisterInput struct {
	Name            string
	Email           string
	Contact         string
	PhysicalAddress string
	Password        string
	Role            entity.Role
}

// SessionView is the identity and profile shown to the front end
type SessionView struct {
	Connected bool                `json:"connected"`
	Identity  entity.Identity     `json:"identity,omitempty"`
	Profile   *entity.UserProfile `json:"profile,omitempty"`
	Role      entity.Role         `json:"role,omitempty"`
	Actions   []entity.Action     `json:"actions,omitempty"`
}

// SessionUsecase manages the wallet account and the backend login bound to it
type SessionUsecase interface {
	// Current returns the session, refreshing the profile from the backend when logged in
	Current(ctx context.Context) (*SessionView, error)

	// SwitchAccount selects another wallet account and drops the cached profile
	SwitchAccount(ctx context.Context, address string) (*SessionView, error)

	// Register creates a backend account for the connected wallet
	Register(ctx context.Context, input RegisterInput) error

	// Login signs in and caches the profile, which must belong to the connected wallet
	Login(ctx context.Context, email, password string) (*SessionView, error)

	// Logout ends the backend session
	Logout(ctx context.Context) error
}
