package memory

import (
	"context"
	"testing"
	"time"

	"medchain/internal/domain/entity"
	"medchain/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const actorAddr = "0x1111111111111111111111111111111111111111"

func newOrphan(t *testing.T, txHash string) *entity.Orphan {
	t.Helper()

	actor, err := entity.ParseIdentity(actorAddr)
	require.NoError(t, err)

	return &entity.Orphan{
		WorkflowID: uuid.New(),
		Action:     entity.ActionCreateRawMaterial,
		Actor:      actor,
		Kind:       entity.OrphanMetadata,
		Status:     entity.OrphanOpen,
		TxHashes:   []string{txHash},
		Writes:     []entity.PendingWrite{{Method: "POST", Endpoint: "/api/raw/add"}},
	}
}

func TestJournal_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewJournal().Repository()

	orphan := newOrphan(t, "0xaaa")
	require.NoError(t, repo.Create(ctx, orphan))
	assert.NotEqual(t, uuid.Nil, orphan.ID)

	found, err := repo.FindByID(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xaaa", found.TxHash())

	byTx, err := repo.FindByTxHash(ctx, "0xaaa")
	require.NoError(t, err)
	require.Len(t, byTx, 1)
	assert.Equal(t, orphan.ID, byTx[0].ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrOrphanNotFound)
}

func TestJournal_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewJournal().Repository()

	orphan := newOrphan(t, "0xaaa")
	require.NoError(t, repo.Create(ctx, orphan))

	found, err := repo.FindByID(ctx, orphan.ID)
	require.NoError(t, err)
	found.Writes[0].Endpoint = "/changed"

	again, err := repo.FindByID(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, "/api/raw/add", again.Writes[0].Endpoint)
}

func TestJournal_ListFiltersNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewJournal().Repository()

	first := newOrphan(t, "0x01")
	require.NoError(t, repo.Create(ctx, first))
	time.Sleep(time.Millisecond)
	second := newOrphan(t, "0x02")
	require.NoError(t, repo.Create(ctx, second))

	now := time.Now().UTC()
	first.Status = entity.OrphanResolved
	first.ResolvedAt = &now
	require.NoError(t, repo.Update(ctx, first))

	all, err := repo.List(ctx, repository.OrphanFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	open, err := repo.List(ctx, repository.OrphanFilter{Status: entity.OrphanOpen})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)

	limited, err := repo.List(ctx, repository.OrphanFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestJournal_ExecuteRollsBack(t *testing.T) {
	ctx := context.Background()
	journal := NewJournal()
	repo := journal.Repository()

	orphan := newOrphan(t, "0xaaa")
	require.NoError(t, repo.Create(ctx, orphan))

	boom := errors.New("boom")
	err := journal.Execute(ctx, func(f repository.RepositoryFactory) error {
		locked, err := f.NewOrphanRepository().FindByIDForUpdate(ctx, orphan.ID)
		if err != nil {
			return err
		}
		locked.Attempts = 5
		if err := f.NewOrphanRepository().Update(ctx, locked); err != nil {
			return err
		}

		return boom
	})
	require.ErrorIs(t, err, boom)

	found, err := repo.FindByID(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Zero(t, found.Attempts)

	require.NoError(t, journal.Execute(ctx, func(f repository.RepositoryFactory) error {
		locked, err := f.NewOrphanRepository().FindByIDForUpdate(ctx, orphan.ID)
		if err != nil {
			return err
		}
		locked.Attempts++

		return f.NewOrphanRepository().Update(ctx, locked)
	}))

	found, err = repo.FindByID(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.Attempts)
}

func TestJournal_UpdateMissing(t *testing.T) {
	repo := NewJournal().Repository()

	err := repo.Update(context.Background(), &entity.Orphan{ID: uuid.New()})
	assert.ErrorIs(t, err, repository.ErrOrphanNotFound)
}
