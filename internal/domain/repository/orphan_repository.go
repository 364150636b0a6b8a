// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"medchain/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrOrphanNotFound is returned when a journal entry does not exist.
var ErrOrphanNotFound = errors.New("orphan not found")

// OrphanFilter narrows journal listings. Zero values match everything.
type OrphanFilter struct {
	Status entity.OrphanStatus
	Actor  entity.Identity
	Limit  int
}

// OrphanRepository persists the reconciliation journal.
type OrphanRepository interface {
	// Create journals a new entry.
	Create(ctx context.Context, orphan *entity.Orphan) error

	// FindByID retrieves an entry.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Orphan, error)

	// FindByIDForUpdate retrieves an entry and locks it for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Orphan, error)

	// FindByTxHash retrieves the entries correlated to a ledger transaction.
	FindByTxHash(ctx context.Context, txHash string) ([]*entity.Orphan, error)

	// List returns entries, newest first.
	List(ctx context.Context, filter OrphanFilter) ([]*entity.Orphan, error)

	// Update stores the mutable fields of an entry.
	Update(ctx context.Context, orphan *entity.Orphan) error
}
