package usecase

import (
	"context"

	"medchain/internal/domain/entity"
	"medchain/internal/domain/repository"

	"github.com/google/uuid"
)

// ReconcileUsecase exposes the journal of ledger transactions the metadata store does not mirror
type ReconcileUsecase interface {
	// Orphans lists journal entries
	Orphans(ctx context.Context, session entity.Session, filter repository.OrphanFilter) ([]*entity.Orphan, error)

	// RetryMetadata replays the pending writes of a journal entry in order
	RetryMetadata(ctx context.Context, session entity.Session, id uuid.UUID) (*entity.Orphan, error)
}
