package postgres

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"medchain/config"
	"medchain/internal/domain/entity"
	"medchain/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const testActor = entity.Identity("0x2000000000000000000000000000000000000002")

// sqlLog collects the statements the GORM slog logger reports.
type sqlLog struct {
	buf bytes.Buffer
}

func (l *sqlLog) Statements(t *testing.T) []string {
	t.Helper()

	var statements []string
	scanner := bufio.NewScanner(bytes.NewReader(l.buf.Bytes()))
	for scanner.Scan() {
		var line struct {
			Msg string `json:"msg"`
			SQL string `json:"sql"`
		}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		if line.SQL != "" {
			statements = append(statements, line.SQL)
		}
	}
	require.NoError(t, scanner.Err())

	return statements
}

func (l *sqlLog) Last(t *testing.T) string {
	t.Helper()

	statements := l.Statements(t)
	require.NotEmpty(t, statements)

	return statements[len(statements)-1]
}

// newDryRunRepository renders SQL against the postgres dialect without a server.
func newDryRunRepository(t *testing.T) (repository.OrphanRepository, *sqlLog) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Env.Debug = true

	log := &sqlLog{}
	db, err := gorm.Open(gormpostgres.Open("host=localhost user=medchain dbname=medchain sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               newGormSlogLogger(slog.New(slog.NewJSONHandler(&log.buf, nil)), cfg),
	})
	require.NoError(t, err)

	return NewOrphanRepository(db), log
}

func TestOrphanRepository_Create(t *testing.T) {
	repo, log := newDryRunRepository(t)

	orphan := &entity.Orphan{
		WorkflowID: uuid.New(),
		Action:     entity.ActionCreateRawMaterial,
		Actor:      testActor,
		Kind:       entity.OrphanMetadata,
		Status:     entity.OrphanOpen,
		TxHashes:   []string{"0xabc"},
	}
	require.NoError(t, repo.Create(context.Background(), orphan))

	assert.NotEqual(t, uuid.Nil, orphan.ID)
	assert.False(t, orphan.CreatedAt.IsZero())

	stmt := log.Last(t)
	assert.Contains(t, stmt, `INSERT INTO "metadata_orphans"`)
	assert.Contains(t, stmt, orphan.ID.String())
	assert.Contains(t, stmt, `["0xabc"]`)
}

func TestOrphanRepository_FindByIDForUpdateLocksRow(t *testing.T) {
	repo, log := newDryRunRepository(t)
	id := uuid.New()

	_, err := repo.FindByIDForUpdate(context.Background(), id)
	require.NoError(t, err)

	stmt := log.Last(t)
	assert.Contains(t, stmt, `FROM "metadata_orphans"`)
	assert.Contains(t, stmt, `"id" = '`+id.String()+`'`)
	assert.Contains(t, stmt, "FOR UPDATE")

	_, err = repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.NotContains(t, log.Last(t), "FOR UPDATE")
}

func TestOrphanRepository_FindByTxHashUsesJSONBContainment(t *testing.T) {
	repo, log := newDryRunRepository(t)

	_, err := repo.FindByTxHash(context.Background(), "0xfeed")
	require.NoError(t, err)

	stmt := log.Last(t)
	assert.Contains(t, stmt, `"tx_hashes" ? '0xfeed'`)
	assert.Contains(t, stmt, `"created_at" DESC`)
}

func TestOrphanRepository_ListAppliesFilter(t *testing.T) {
	repo, log := newDryRunRepository(t)
	ctx := context.Background()

	_, err := repo.List(ctx, repository.OrphanFilter{Status: entity.OrphanOpen, Actor: testActor, Limit: 5})
	require.NoError(t, err)

	stmt := log.Last(t)
	assert.Contains(t, stmt, `"status" = 'open'`)
	assert.Contains(t, stmt, `"actor" = '`+testActor.String()+`'`)
	assert.Contains(t, stmt, `"created_at" DESC`)
	assert.Contains(t, stmt, "LIMIT 5")

	_, err = repo.List(ctx, repository.OrphanFilter{})
	require.NoError(t, err)
	stmt = log.Last(t)
	assert.NotContains(t, stmt, "WHERE")
	assert.NotContains(t, stmt, "LIMIT")
}

func TestOrphanRepository_UpdateWritesBookkeepingOnly(t *testing.T) {
	repo, log := newDryRunRepository(t)

	orphan := &entity.Orphan{
		ID:        uuid.New(),
		Action:    entity.ActionCreateRawMaterial,
		Actor:     testActor,
		Kind:      entity.OrphanMetadata,
		Status:    entity.OrphanResolved,
		Attempts:  3,
		LastError: "backend down",
	}

	// A dry run affects no rows.
	err := repo.Update(context.Background(), orphan)
	require.ErrorIs(t, err, repository.ErrOrphanNotFound)
	assert.False(t, orphan.UpdatedAt.IsZero())

	stmt := log.Last(t)
	assert.Contains(t, stmt, `UPDATE "metadata_orphans" SET`)
	assert.Contains(t, stmt, `'resolved'`)
	assert.Contains(t, stmt, `"attempts"=3`)
	assert.Contains(t, stmt, orphan.ID.String())
	assert.NotContains(t, stmt, `"kind"`)
	assert.NotContains(t, stmt, `"workflow_id"`)
}
