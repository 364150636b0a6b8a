package impl

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math/big"
	"sync"
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

// maxOrderID bounds client generated order ids to [0, 1_000_000).
const maxOrderID = 1_000_000

type coordinator struct {
	wallet   service.WalletSession
	metadata service.MetadataRecorder
	names    *nameResolver
	journal  *orphanJournal
	events   service.EventPublisher
	qr       service.QRCodeService
	logger   *slog.Logger

	newOrderID func() (int64, error)

	mu       sync.Mutex
	inFlight map[uuid.UUID]*entity.Workflow
}

// CoordinatorParams holds dependencies for the workflow coordinator, injected by Fx
type CoordinatorParams struct {
	fx.In

	Wallet   service.WalletSession
	Metadata service.MetadataRecorder
	Users    service.UserDirectory
	Orphans  repository.OrphanRepository
	Images   service.ImageStore
	Events   service.EventPublisher
	QRCode   service.QRCodeService
	Logger   *slog.Logger
}

// NewCoordinator creates the workflow coordinator
func NewCoordinator(params CoordinatorParams) usecase.WorkflowUsecase {
	c := &coordinator{
		wallet:     params.Wallet,
		metadata:   params.Metadata,
		names:      newNameResolver(params.Users, params.Logger),
		journal:    &orphanJournal{orphans: params.Orphans, images: params.Images, logger: params.Logger},
		events:     params.Events,
		qr:         params.QRCode,
		logger:     params.Logger,
		newOrderID: randomOrderID,
		inFlight:   make(map[uuid.UUID]*entity.Workflow),
	}
	params.Wallet.Subscribe(c.identityChanged)

	return c
}

func randomOrderID() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxOrderID))
	if err != nil {
		return 0, errors.Wrap(err, "generate order id")
	}

	return n.Int64(), nil
}

// identityChanged warns about workflows of the previous account still running.
// Their submitted transactions are left alone.
func (c *coordinator) identityChanged(change service.IdentityChange) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, wf := range c.inFlight {
		if wf.Actor != change.Previous {
			continue
		}
		c.logger.Warn("Wallet account changed while workflow in flight",
			slog.String("workflow_id", wf.ID.String()),
			slog.String("action", wf.Action.String()),
			slog.String("state", string(wf.State)),
			slog.String("next", change.Next.String()),
		)
	}
}

// run is one workflow instance driven through its state machine.
type run struct {
	c       *coordinator
	wf      *entity.Workflow
	session entity.Session
	role    entity.Role
	ledger  service.Ledger
	views   contractViews
	logger  *slog.Logger
	journal *entity.Orphan
}

// begin checks the wallet and the capability table, then enters Validating.
// Nothing touches the network before the wallet check.
func (c *coordinator) begin(ctx context.Context, session entity.Session, action entity.Action) (*run, error) {
	if !session.Connected() {
		return nil, domainerrors.ErrWalletUnavailable
	}
	ledger, ok := c.wallet.LedgerHandle()
	if !ok {
		return nil, domainerrors.ErrWalletUnavailable
	}

	role, err := authorize(ctx, ledger, session, action)
	if err != nil {
		return nil, err
	}

	wf := entity.NewWorkflow(action, session.Identity)
	if err := wf.Advance(entity.StateValidating); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.inFlight[wf.ID] = wf
	c.mu.Unlock()

	logger := deliverycontext.GetLoggerOrDefault(ctx, c.logger).With(
		slog.String("workflow_id", wf.ID.String()),
		slog.String("action", action.String()),
	)
	logger.Debug("Workflow started", slog.String("actor", session.Identity.String()), slog.String("role", role.String()))

	return &run{
		c:       c,
		wf:      wf,
		session: session,
		role:    role,
		ledger:  ledger,
		views:   contractViews{ledger: ledger, from: session.Identity},
		logger:  logger,
	}, nil
}

// invoke submits one contract write and waits for it to be mined.
func (r *run) invoke(ctx context.Context, method string, args ...any) (*entity.Receipt, error) {
	if err := r.wf.Advance(entity.StateLedgerPending); err != nil {
		return nil, err
	}

	started := time.Now()
	receipt, err := r.ledger.Invoke(ctx, entity.Invocation{
		Method: method,
		Args:   args,
		From:   r.session.Identity,
	})
	if err != nil {
		var rejected *domainerrors.LedgerRejectedError
		if errors.As(err, &rejected) && rejected.Unconfirmed {
			r.wf.Submitted(rejected.TxHash)
			r.logger.Warn("Ledger transaction unconfirmed",
				slog.String("method", method),
				slog.String("tx_hash", rejected.TxHash),
				slog.Duration("elapsed", time.Since(started)),
			)

			return nil, r.abandon(ctx, err)
		}

		return nil, err
	}

	r.wf.Confirmed(receipt.TxHash)
	r.logger.Info("Ledger transaction confirmed",
		slog.String("method", method),
		slog.String("tx_hash", receipt.TxHash),
		slog.Uint64("block", receipt.BlockNumber),
		slog.Duration("elapsed", time.Since(started)),
	)

	return receipt, nil
}

// record performs the metadata writes in order. On the first failure the remaining
// writes are journalled against the workflow's tx hashes and the error carries the
// journal id.
func (r *run) record(ctx context.Context, writes ...entity.MetadataWrite) ([]entity.StoredRecord, error) {
	if err := r.wf.Advance(entity.StateMetadataPending); err != nil {
		return nil, err
	}

	records := make([]entity.StoredRecord, 0, len(writes))
	for i, write := range writes {
		if write.TxHash == "" {
			write.TxHash = r.wf.LastTxHash()
		}

		record, err := r.c.metadata.Record(ctx, write)
		if err != nil {
			return records, r.orphaned(ctx, writes[i:], err)
		}
		records = append(records, record)
	}

	return records, nil
}

func (r *run) orphaned(ctx context.Context, remaining []entity.MetadataWrite, err error) error {
	r.journal = r.c.journal.add(ctx, r.wf, entity.OrphanMetadata, remaining, err)

	var backendErr *domainerrors.BackendUnavailableError
	if !errors.As(err, &backendErr) {
		backendErr = domainerrors.NewBackendUnavailableError(remaining[0].Endpoint, 0, err)
	}
	if backendErr.TxHash == "" {
		backendErr = backendErr.WithTxHash(r.wf.LastTxHash())
	}
	if r.journal != nil {
		backendErr = backendErr.WithJournalID(r.journal.ID.String())
	}

	return backendErr
}

// reload refreshes the lists the caller shows next. A failed reload does not undo
// the workflow, so it is only logged.
func (r *run) reload(ctx context.Context, views map[string]string) map[string][]entity.StoredRecord {
	reloaded := make(map[string][]entity.StoredRecord, len(views))
	for view, endpoint := range views {
		records, err := r.c.metadata.Query(ctx, endpoint, nil)
		if err != nil {
			r.logger.Warn("Reload after workflow failed", slog.String("endpoint", endpoint), slog.Any("error", err))

			continue
		}
		reloaded[view] = records
	}

	return reloaded
}

// abandon journals confirmed transactions that will never get a metadata mirror.
// A workflow is journalled at most once.
func (r *run) abandon(ctx context.Context, err error) error {
	if r.journal == nil && len(r.wf.TxHashes) > 0 {
		r.journal = r.c.journal.add(ctx, r.wf, entity.OrphanLedgerOnly, nil, err)
	}

	return err
}

// finish moves the workflow to its terminal state and publishes it.
func (r *run) finish(ctx context.Context, err error) {
	r.c.mu.Lock()
	delete(r.c.inFlight, r.wf.ID)
	r.c.mu.Unlock()

	event := &entity.WorkflowEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		WorkflowID: r.wf.ID.String(),
		Action:     r.wf.Action,
		Actor:      r.wf.Actor.String(),
		TxHashes:   r.wf.TxHashes,
		OccurredAt: time.Now().UTC(),
	}
	if r.journal != nil {
		event.JournalID = r.journal.ID.String()
	}

	if err != nil {
		r.wf.Fail()
		event.Error = err.Error()
		r.logger.Warn("Workflow failed", slog.String("state", string(r.wf.State)), slog.Any("error", err))
	} else if advErr := r.wf.Advance(entity.StateDone); advErr != nil {
		r.logger.Error("Workflow could not complete", slog.Any("error", advErr))
	} else {
		r.logger.Info("Workflow done", slog.Any("tx_hashes", r.wf.TxHashes))
	}
	event.State = r.wf.State

	// Detached so a cancelled request still publishes its outcome.
	if pubErr := r.c.events.PublishWorkflowEvent(context.WithoutCancel(ctx), event); pubErr != nil {
		r.logger.Warn("Failed to publish workflow event", slog.Any("error", pubErr))
	}
}

func (r *run) result(record entity.StoredRecord, reloaded map[string][]entity.StoredRecord) *usecase.WorkflowResult {
	return &usecase.WorkflowResult{
		WorkflowID: r.wf.ID,
		Action:     r.wf.Action,
		State:      r.wf.State,
		TxHashes:   r.wf.TxHashes,
		Record:     record,
		Reloaded:   reloaded,
	}
}

// firstRecord returns the document of the primary write.
func firstRecord(records []entity.StoredRecord) entity.StoredRecord {
	if len(records) == 0 {
		return nil
	}

	return records[0]
}
