// Package memory keeps the reconciliation journal in process memory for
// deployments without PostgreSQL. Entries do not survive a restart.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/repository"

	"github.com/google/uuid"
)

// Journal stores entries and serializes transactions.
type Journal struct {
	txMu sync.Mutex

	mu      sync.RWMutex
	entries map[uuid.UUID]*entity.Orphan
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{entries: make(map[uuid.UUID]*entity.Orphan)}
}

// Repository returns a repository that is not bound to a transaction.
func (j *Journal) Repository() repository.OrphanRepository {
	return &orphanRepository{journal: j}
}

// Execute runs fn with exclusive access and restores the previous entries if it fails.
func (j *Journal) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.txMu.Lock()
	defer j.txMu.Unlock()

	j.mu.RLock()
	snapshot := maps.Clone(j.entries)
	j.mu.RUnlock()

	if err := fn(j); err != nil {
		j.mu.Lock()
		j.entries = snapshot
		j.mu.Unlock()

		return err
	}

	return nil
}

// NewOrphanRepository satisfies repository.RepositoryFactory.
func (j *Journal) NewOrphanRepository() repository.OrphanRepository {
	return j.Repository()
}

type orphanRepository struct {
	journal *Journal
}

func (r *orphanRepository) Create(_ context.Context, orphan *entity.Orphan) error {
	j := r.journal
	j.mu.Lock()
	defer j.mu.Unlock()

	if orphan.ID == uuid.Nil {
		orphan.ID = uuid.New()
	}
	if _, ok := j.entries[orphan.ID]; ok {
		return domainerrors.Validation("journal entry %s already exists", orphan.ID)
	}

	now := time.Now().UTC()
	orphan.CreatedAt = now
	orphan.UpdatedAt = now
	j.entries[orphan.ID] = clone(orphan)

	return nil
}

func (r *orphanRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Orphan, error) {
	j := r.journal
	j.mu.RLock()
	defer j.mu.RUnlock()

	orphan, ok := j.entries[id]
	if !ok {
		return nil, repository.ErrOrphanNotFound
	}

	return clone(orphan), nil
}

// FindByIDForUpdate needs no extra locking: Execute already holds the journal exclusively.
func (r *orphanRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Orphan, error) {
	return r.FindByID(ctx, id)
}

func (r *orphanRepository) FindByTxHash(_ context.Context, txHash string) ([]*entity.Orphan, error) {
	return r.collect(func(o *entity.Orphan) bool {
		return slices.Contains(o.TxHashes, txHash)
	}, 0), nil
}

func (r *orphanRepository) List(_ context.Context, filter repository.OrphanFilter) ([]*entity.Orphan, error) {
	return r.collect(func(o *entity.Orphan) bool {
		if filter.Status != "" && o.Status != filter.Status {
			return false
		}

		return filter.Actor.IsZero() || o.Actor == filter.Actor
	}, filter.Limit), nil
}

func (r *orphanRepository) Update(_ context.Context, orphan *entity.Orphan) error {
	j := r.journal
	j.mu.Lock()
	defer j.mu.Unlock()

	stored, ok := j.entries[orphan.ID]
	if !ok {
		return repository.ErrOrphanNotFound
	}

	orphan.UpdatedAt = time.Now().UTC()
	updated := clone(stored)
	updated.Status = orphan.Status
	updated.Writes = slices.Clone(orphan.Writes)
	updated.Attempts = orphan.Attempts
	updated.LastError = orphan.LastError
	updated.UpdatedAt = orphan.UpdatedAt
	updated.ResolvedAt = orphan.ResolvedAt
	j.entries[orphan.ID] = updated

	return nil
}

// collect returns matching entries newest first.
func (r *orphanRepository) collect(match func(*entity.Orphan) bool, limit int) []*entity.Orphan {
	j := r.journal
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]*entity.Orphan, 0)
	for _, orphan := range j.entries {
		if match(orphan) {
			out = append(out, clone(orphan))
		}
	}

	slices.SortFunc(out, func(a, b *entity.Orphan) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}

func clone(o *entity.Orphan) *entity.Orphan {
	c := *o
	c.TxHashes = slices.Clone(o.TxHashes)
	c.Writes = slices.Clone(o.Writes)
	if o.ResolvedAt != nil {
		at := *o.ResolvedAt
		c.ResolvedAt = &at
	}

	return &c
}
