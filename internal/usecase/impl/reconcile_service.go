package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "medchain/internal/delivery/context"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/repository"
	"medchain/internal/domain/service"
	"medchain/internal/errors"
	"medchain/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type reconcileService struct {
	wallet    service.WalletSession
	metadata  service.MetadataRecorder
	txManager repository.TransactionManager
	orphans   repository.OrphanRepository
	journal   *orphanJournal
	logger    *slog.Logger
}

// ReconcileParams holds dependencies for the reconciliation use case, injected by Fx
type ReconcileParams struct {
	fx.In

	Wallet    service.WalletSession
	Metadata  service.MetadataRecorder
	TxManager repository.TransactionManager
	Orphans   repository.OrphanRepository
	Images    service.ImageStore
	Logger    *slog.Logger
}

// NewReconcileService creates the reconciliation use case
func NewReconcileService(params ReconcileParams) usecase.ReconcileUsecase {
	return &reconcileService{
		wallet:    params.Wallet,
		metadata:  params.Metadata,
		txManager: params.TxManager,
		orphans:   params.Orphans,
		journal:   &orphanJournal{orphans: params.Orphans, images: params.Images, logger: params.Logger},
		logger:    params.Logger,
	}
}

// Orphans lists journal entries. Only a superadmin sees entries of other accounts.
func (s *reconcileService) Orphans(ctx context.Context, session entity.Session, filter repository.OrphanFilter) ([]*entity.Orphan, error) {
	role, err := s.role(ctx, session)
	if err != nil {
		return nil, err
	}
	if role != entity.RoleSuperAdmin {
		filter.Actor = session.Identity
	}

	return s.orphans.List(ctx, filter)
}

// RetryMetadata replays the pending writes of an entry in order. Writes that succeed are
// dropped from the entry even when a later one fails, so a retry never duplicates them.
func (s *reconcileService) RetryMetadata(ctx context.Context, session entity.Session, id uuid.UUID) (*entity.Orphan, error) {
	role, err := s.role(ctx, session)
	if err != nil {
		return nil, err
	}
	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger).With(slog.String("orphan_id", id.String()))

	var (
		result    *entity.Orphan
		replayErr error
		replayed  []entity.PendingWrite
	)
	err = s.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		repo := factory.NewOrphanRepository()

		orphan, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrOrphanNotFound) {
				return domainerrors.ErrNotFound.WithDetails("journal entry " + id.String())
			}

			return err
		}
		if role != entity.RoleSuperAdmin && orphan.Actor != session.Identity {
			return domainerrors.ErrForbidden.WithDetails("journal entry belongs to another account")
		}
		if orphan.Status == entity.OrphanResolved {
			return domainerrors.ErrOrphanResolved
		}
		if !orphan.Replayable() {
			return domainerrors.ErrOrphanNotReplayable.WithDetails(string(orphan.Kind))
		}

		orphan.Attempts++
		done := 0
		for _, pending := range orphan.Writes {
			write, err := s.journal.restore(ctx, pending, orphan.TxHash())
			if err == nil {
				_, err = s.metadata.Record(ctx, write)
			}
			if err != nil {
				replayErr = err

				break
			}
			done++
		}
		replayed = append(replayed, orphan.Writes[:done]...)
		orphan.Writes = orphan.Writes[done:]

		now := time.Now().UTC()
		orphan.UpdatedAt = now
		if replayErr != nil {
			orphan.LastError = replayErr.Error()
		} else {
			orphan.Status = entity.OrphanResolved
			orphan.ResolvedAt = &now
			orphan.LastError = ""
		}

		if err := repo.Update(ctx, orphan); err != nil {
			return err
		}
		result = orphan

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.journal.release(ctx, &entity.Orphan{Writes: replayed})

	if replayErr != nil {
		logger.Warn("Metadata replay stopped", slog.Int("remaining", len(result.Writes)), slog.Any("error", replayErr))

		var backendErr *domainerrors.BackendUnavailableError
		if !errors.As(replayErr, &backendErr) {
			backendErr = domainerrors.NewBackendUnavailableError(result.Writes[0].Endpoint, 0, replayErr)
		}

		return result, backendErr.WithTxHash(result.TxHash()).WithJournalID(result.ID.String())
	}

	logger.Info("Metadata replay completed", slog.Any("tx_hashes", result.TxHashes), slog.Int("attempts", result.Attempts))

	return result, nil
}

// role gates the journal to the parties that run workflows.
func (s *reconcileService) role(ctx context.Context, session entity.Session) (entity.Role, error) {
	if !session.Connected() {
		return "", domainerrors.ErrWalletUnavailable
	}
	ledger, _ := s.wallet.LedgerHandle()

	return resolveRole(ctx, ledger, session)
}
