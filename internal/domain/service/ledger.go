// Package service declares the ports the use cases drive.
package service

import (
	"context"

	"medchain/internal/domain/entity"
)

// Ledger submits contract writes and performs read-only contract calls.
type Ledger interface {
	// Invoke signs and submits a contract method call, then blocks until it is mined.
	// Any failure, including a reverted receipt, is a LedgerRejectedError. No retries.
	Invoke(ctx context.Context, inv entity.Invocation) (*entity.Receipt, error)

	// Call executes a view method and returns its decoded outputs.
	Call(ctx context.Context, from entity.Identity, method string, args ...any) ([]any, error)
}

// KeyRing is the set of accounts the wallet can sign for.
type KeyRing interface {
	// Accounts lists the signable accounts.
	Accounts() []entity.Identity

	// Holds reports whether the account can sign.
	Holds(id entity.Identity) bool

	// OnAccountDropped registers a callback run when an account disappears from the wallet.
	OnAccountDropped(fn func(entity.Identity))
}
