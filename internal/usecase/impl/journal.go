package impl

import (
	"context"
	"fmt"
	"log/slog"

	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/repository"
	"medchain/internal/domain/service"
	"medchain/internal/util"

	"github.com/google/uuid"
)

// orphanJournal records ledger transactions whose metadata mirror is missing.
// Images of multipart writes are staged so the writes can be replayed later.
type orphanJournal struct {
	orphans repository.OrphanRepository
	images  service.ImageStore
	logger  *slog.Logger
}

func imageKey(orphanID uuid.UUID, index int) string {
	return fmt.Sprintf("orphans/%s/%d", orphanID, index)
}

// add journals the workflow's tx hashes with the writes still owed to the backend.
// A journal failure is logged and reported as a nil entry: the original error wins.
func (j *orphanJournal) add(
	ctx context.Context,
	wf *entity.Workflow,
	kind entity.OrphanKind,
	writes []entity.MetadataWrite,
	cause error,
) *entity.Orphan {
	orphan := &entity.Orphan{
		ID:         uuid.New(),
		WorkflowID: wf.ID,
		Action:     wf.Action,
		Actor:      wf.Actor,
		Kind:       kind,
		Status:     entity.OrphanOpen,
		TxHashes:   append([]string(nil), wf.TxHashes...),
		LastError:  cause.Error(),
	}

	for i, write := range writes {
		pending := entity.PendingWrite{
			Method:   write.Method,
			Endpoint: write.Endpoint,
			Payload:  write.Payload,
		}
		if write.Image != nil {
			key := imageKey(orphan.ID, i)
			if err := j.images.Put(ctx, key, write.Image); err != nil {
				j.logger.Error("Failed to stage image for replay",
					slog.String("orphan_id", orphan.ID.String()),
					slog.Any("error", err),
				)
			} else {
				j.logger.Debug("Image staged for replay",
					slog.String("key", key),
					slog.String("size", util.FormatBytes(int64(len(write.Image.Data)))),
					slog.String("sha256", util.Checksum(write.Image.Data)),
				)
				pending.ImageKey = key
				pending.ImageFilename = write.Image.Filename
				pending.ImageContentType = write.Image.ContentType
			}
		}
		orphan.Writes = append(orphan.Writes, pending)
	}

	if err := j.orphans.Create(ctx, orphan); err != nil {
		j.logger.Error("Failed to journal orphaned transaction",
			slog.String("workflow_id", wf.ID.String()),
			slog.Any("tx_hashes", wf.TxHashes),
			slog.Any("error", err),
		)

		return nil
	}

	j.logger.Warn("Ledger transaction journalled without metadata",
		slog.String("orphan_id", orphan.ID.String()),
		slog.String("kind", string(kind)),
		slog.Any("tx_hashes", orphan.TxHashes),
	)

	return orphan
}

// restore rebuilds a metadata write from its journalled form.
func (j *orphanJournal) restore(ctx context.Context, pending entity.PendingWrite, txHash string) (entity.MetadataWrite, error) {
	write := entity.MetadataWrite{
		Method:   pending.Method,
		Endpoint: pending.Endpoint,
		Payload:  pending.Payload,
		TxHash:   txHash,
	}
	if pending.ImageKey == "" {
		return write, nil
	}

	image, err := j.images.Get(ctx, pending.ImageKey)
	if err != nil {
		return write, domainerrors.NewBackendUnavailableError(pending.Endpoint, 0, err).WithTxHash(txHash)
	}
	if image.Filename == "" {
		image.Filename = pending.ImageFilename
	}
	if image.ContentType == "" {
		image.ContentType = pending.ImageContentType
	}
	write.Image = image

	return write, nil
}

// release drops the staged images of a resolved entry.
func (j *orphanJournal) release(ctx context.Context, orphan *entity.Orphan) {
	for _, pending := range orphan.Writes {
		if pending.ImageKey == "" {
			continue
		}
		if err := j.images.Delete(ctx, pending.ImageKey); err != nil {
			j.logger.Warn("Failed to delete staged image", slog.String("key", pending.ImageKey), slog.Any("error", err))
		}
	}
}
