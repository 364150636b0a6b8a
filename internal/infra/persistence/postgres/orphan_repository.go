// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/repository"
	"medchain/internal/infra/persistence/model"
	"medchain/internal/infra/persistence/postgres/query"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orphanRepository implements the repository.OrphanRepository interface.
type orphanRepository struct {
	q *query.Query
}

// NewOrphanRepository is the constructor for orphanRepository.
func NewOrphanRepository(db *gorm.DB) repository.OrphanRepository {
	return &orphanRepository{
		q: query.Use(db),
	}
}

// Create journals a new entry.
func (repo *orphanRepository) Create(ctx context.Context, orphan *entity.Orphan) error {
	if orphan.ID == uuid.Nil {
		orphan.ID = uuid.New()
	}
	orphanM := fromOrphanDomain(orphan)

	if err := repo.q.OrphanModel.WithContext(ctx).Create(orphanM); err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.Validation("journal entry %s already exists", orphan.ID)
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.Validation("journal entry is missing required fields")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create journal entry")
	}

	orphan.CreatedAt = orphanM.CreatedAt
	orphan.UpdatedAt = orphanM.UpdatedAt

	return nil
}

// FindByID retrieves an entry by its ID.
func (repo *orphanRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Orphan, error) {
	return repo.first(repo.q.OrphanModel.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves an entry with a row lock held until the transaction ends.
func (repo *orphanRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Orphan, error) {
	return repo.first(repo.q.OrphanModel.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (repo *orphanRepository) first(do query.IOrphanModelDo, id uuid.UUID) (*entity.Orphan, error) {
	o := repo.q.OrphanModel

	orphanM, err := do.Where(o.ID.Eq(id)).First()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrphanNotFound
		}

		return nil, errors.Wrap(err, "failed to find journal entry by ID")
	}

	return toOrphanDomain(orphanM), nil
}

// FindByTxHash retrieves the entries whose tx hash list contains txHash.
func (repo *orphanRepository) FindByTxHash(ctx context.Context, txHash string) ([]*entity.Orphan, error) {
	o := repo.q.OrphanModel

	orphanModels, err := o.WithContext(ctx).
		Where(gen.Cond(datatypes.JSONArrayQuery(string(o.TxHashes.ColumnName())).Contains(txHash))...).
		Order(o.CreatedAt.Desc()).
		Find()
	if err != nil {
		return nil, errors.Wrap(err, "failed to find journal entries by tx hash")
	}

	return toOrphanDomains(orphanModels), nil
}

// List returns entries matching filter, newest first.
func (repo *orphanRepository) List(ctx context.Context, filter repository.OrphanFilter) ([]*entity.Orphan, error) {
	o := repo.q.OrphanModel
	do := o.WithContext(ctx).Order(o.CreatedAt.Desc())

	if filter.Status != "" {
		do = do.Where(o.Status.Eq(string(filter.Status)))
	}
	if !filter.Actor.IsZero() {
		do = do.Where(o.Actor.Eq(filter.Actor.String()))
	}
	if filter.Limit > 0 {
		do = do.Limit(filter.Limit)
	}

	orphanModels, err := do.Find()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list journal entries")
	}

	return toOrphanDomains(orphanModels), nil
}

// Update stores the status, remaining writes and attempt bookkeeping of an entry.
func (repo *orphanRepository) Update(ctx context.Context, orphan *entity.Orphan) error {
	o := repo.q.OrphanModel
	orphan.UpdatedAt = time.Now().UTC()
	orphanM := fromOrphanDomain(orphan)

	info, err := o.WithContext(ctx).
		Select(o.Status, o.Writes, o.Attempts, o.LastError, o.UpdatedAt, o.ResolvedAt).
		Where(o.ID.Eq(orphanM.ID)).
		Updates(orphanM)
	if err != nil {
		return errors.Wrap(err, "failed to update journal entry")
	}
	if info.RowsAffected == 0 {
		return repository.ErrOrphanNotFound
	}

	return nil
}

func fromOrphanDomain(orphan *entity.Orphan) *model.OrphanModel {
	return &model.OrphanModel{
		ID:         orphan.ID,
		WorkflowID: orphan.WorkflowID,
		Action:     orphan.Action.String(),
		Actor:      orphan.Actor.String(),
		Kind:       string(orphan.Kind),
		Status:     string(orphan.Status),
		TxHashes:   orphan.TxHashes,
		Writes:     orphan.Writes,
		Attempts:   orphan.Attempts,
		LastError:  orphan.LastError,
		CreatedAt:  orphan.CreatedAt,
		UpdatedAt:  orphan.UpdatedAt,
		ResolvedAt: orphan.ResolvedAt,
	}
}

func toOrphanDomain(orphanM *model.OrphanModel) *entity.Orphan {
	// Stored actors were written through Identity.String, so parsing cannot fail for valid rows.
	actor, _ := entity.ParseIdentity(orphanM.Actor)

	return &entity.Orphan{
		ID:         orphanM.ID,
		WorkflowID: orphanM.WorkflowID,
		Action:     entity.Action(orphanM.Action),
		Actor:      actor,
		Kind:       entity.OrphanKind(orphanM.Kind),
		Status:     entity.OrphanStatus(orphanM.Status),
		TxHashes:   orphanM.TxHashes,
		Writes:     orphanM.Writes,
		Attempts:   orphanM.Attempts,
		LastError:  orphanM.LastError,
		CreatedAt:  orphanM.CreatedAt,
		UpdatedAt:  orphanM.UpdatedAt,
		ResolvedAt: orphanM.ResolvedAt,
	}
}

func toOrphanDomains(orphanModels []*model.OrphanModel) []*entity.Orphan {
	orphans := make([]*entity.Orphan, 0, len(orphanModels))
	for _, orphanM := range orphanModels {
		orphans = append(orphans, toOrphanDomain(orphanM))
	}

	return orphans
}
