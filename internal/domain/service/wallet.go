package service

import (
	"context"

	"medchain/internal/domain/entity"
)

// IdentityChange is broadcast when the selected account changes.
// Next is empty when the account was disconnected.
type IdentityChange struct {
	Previous entity.Identity
	Next     entity.Identity
}

// WalletSession is the process-wide holder of the connected identity.
type WalletSession interface {
	// CurrentIdentity returns the selected account, if any.
	CurrentIdentity() (entity.Identity, bool)

	// LedgerHandle returns the contract binding usable by the current identity.
	LedgerHandle() (Ledger, bool)

	// Snapshot captures the identity and cached profile for one workflow instance.
	Snapshot() entity.Session

	// Switch selects another account held by the wallet.
	Switch(ctx context.Context, id entity.Identity) error

	// Disconnect clears the selected account.
	Disconnect()

	// SetProfile caches the backend profile of the current identity. Nil clears it.
	SetProfile(profile *entity.UserProfile)

	// SetProfileFor caches the profile only if id is still the current identity.
	// It reports whether the profile was stored.
	SetProfileFor(id entity.Identity, profile *entity.UserProfile) bool

	// Subscribe registers a listener for identity changes and returns its cancel func.
	Subscribe(fn func(IdentityChange)) func()
}
