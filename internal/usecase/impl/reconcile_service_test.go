package impl

import (
	"context"
	"errors"
	"testing"

	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/repository"
	"medchain/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminAddr = entity.Identity("0x9000000000000000000000000000000000000009")

func newReconcileHarness(t *testing.T) (*harness, usecase.ReconcileUsecase) {
	t.Helper()

	h := newHarness(t)
	h.ledger.RegisterUser(adminAddr, entity.LedgerUser{Name: "Ops", EmailID: "ops@medchain.test", Role: entity.RoleSuperAdmin})

	return h, NewReconcileService(ReconcileParams{
		Wallet:    h.wallet,
		Metadata:  h.metadata,
		TxManager: h.journal,
		Orphans:   h.journal.Repository(),
		Images:    h.images,
		Logger:    discardLogger(),
	})
}

func TestReconcile_RetryReplaysMultipartWrite(t *testing.T) {
	h, uc := newReconcileHarness(t)
	ctx := context.Background()

	h.metadata.FailNext(constants.EndpointRaw, errors.New("timeout"))
	_, err := h.uc.CreateRawMaterial(ctx, h.as(supplierAddr), usecase.CreateRawMaterialInput{
		Name: "Gauze", Quantity: 40, Price: 2, Category: "Textile", Image: testImage(),
	})
	var backendErr *domainerrors.BackendUnavailableError
	require.ErrorAs(t, err, &backendErr)
	assert.Empty(t, h.metadata.Docs("raw"))

	orphans, err := uc.Orphans(ctx, h.as(supplierAddr), repository.OrphanFilter{})
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	require.Len(t, orphans[0].Writes, 1)
	imageKey := orphans[0].Writes[0].ImageKey
	require.NotEmpty(t, imageKey)

	id, err := uuid.Parse(backendErr.JournalID)
	require.NoError(t, err)

	resolved, err := uc.RetryMetadata(ctx, h.as(supplierAddr), id)
	require.NoError(t, err)
	assert.Equal(t, entity.OrphanResolved, resolved.Status)
	assert.Equal(t, 1, resolved.Attempts)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Empty(t, resolved.Writes)

	writes := h.metadata.Writes(constants.EndpointRaw)
	require.Len(t, writes, 1)
	assert.True(t, writes[0].Multipart())
	assert.Equal(t, backendErr.TxHash, writes[0].TxHash)
	assert.Len(t, h.metadata.Docs("raw"), 1)

	_, err = h.images.Get(ctx, imageKey)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = uc.RetryMetadata(ctx, h.as(supplierAddr), id)
	require.ErrorIs(t, err, domainerrors.ErrOrphanResolved)
}

func TestReconcile_PartialReplayKeepsRemainingWrites(t *testing.T) {
	h, uc := newReconcileHarness(t)
	ctx := context.Background()

	approvedID := h.seedApprovedRequest(100, 10)
	h.metadata.FailNext(constants.EndpointEquipmentCreate, errors.New("bad gateway"))
	_, err := h.uc.CreateEquipment(ctx, h.as(manufacturerAddr), usecase.CreateEquipmentInput{
		ApprovedRequestID: approvedID, Name: "Splint", Price: 15, Category: "Orthopedic", Units: 6,
	})
	var backendErr *domainerrors.BackendUnavailableError
	require.ErrorAs(t, err, &backendErr)
	id := uuid.MustParse(backendErr.JournalID)

	h.metadata.FailNext(constants.EndpointApprovedUpdateUsed, errors.New("still down"))
	partial, err := uc.RetryMetadata(ctx, h.as(manufacturerAddr), id)
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, id.String(), backendErr.JournalID)
	require.NotNil(t, partial)
	assert.Equal(t, entity.OrphanOpen, partial.Status)
	require.Len(t, partial.Writes, 1)
	assert.Equal(t, constants.EndpointApprovedUpdateUsed, partial.Writes[0].Endpoint)
	assert.Contains(t, partial.LastError, "still down")
	assert.Len(t, h.metadata.Docs("equipment"), 1)

	resolved, err := uc.RetryMetadata(ctx, h.as(manufacturerAddr), id)
	require.NoError(t, err)
	assert.Equal(t, entity.OrphanResolved, resolved.Status)
	assert.Equal(t, 2, resolved.Attempts)

	// Each write reached the backend exactly once.
	assert.Len(t, h.metadata.Docs("equipment"), 1)
	assert.Equal(t, int64(6), toInt(h.metadata.Docs("approved")[0]["usedQuantity"]))
}

func TestReconcile_AccessRules(t *testing.T) {
	h, uc := newReconcileHarness(t)
	ctx := context.Background()

	h.metadata.FailNext(constants.EndpointRaw, errors.New("timeout"))
	_, err := h.uc.CreateRawMaterial(ctx, h.as(supplierAddr), usecase.CreateRawMaterialInput{
		Name: "Cotton", Quantity: 5, Price: 1, Category: "Textile", Image: testImage(),
	})
	var backendErr *domainerrors.BackendUnavailableError
	require.ErrorAs(t, err, &backendErr)
	id := uuid.MustParse(backendErr.JournalID)

	ledgerOnly := &entity.Orphan{
		ID:       uuid.New(),
		Action:   entity.ActionPlaceOrder,
		Actor:    hospitalAddr,
		Kind:     entity.OrphanLedgerOnly,
		Status:   entity.OrphanOpen,
		TxHashes: []string{"0xaa"},
	}
	require.NoError(t, h.journal.Repository().Create(ctx, ledgerOnly))

	foreign, err := uc.Orphans(ctx, h.as(manufacturerAddr), repository.OrphanFilter{})
	require.NoError(t, err)
	assert.Empty(t, foreign)

	_, err = uc.RetryMetadata(ctx, h.as(manufacturerAddr), id)
	require.ErrorIs(t, err, domainerrors.ErrForbidden)

	all, err := uc.Orphans(ctx, h.as(adminAddr), repository.OrphanFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = uc.RetryMetadata(ctx, h.as(adminAddr), ledgerOnly.ID)
	require.ErrorIs(t, err, domainerrors.ErrOrphanNotReplayable)

	_, err = uc.RetryMetadata(ctx, h.as(adminAddr), uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = uc.Orphans(ctx, entity.Session{}, repository.OrphanFilter{})
	require.ErrorIs(t, err, domainerrors.ErrWalletUnavailable)
}
