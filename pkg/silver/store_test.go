package silver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/warehouse/pkg/bronze"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=dry password=dry dbname=dry port=5432 sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true, SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db
}

func TestUpsertOverwritesNonKeyColumns(t *testing.T) {
	stmt := upsertRows(dryRunDB(t), []Patient{{SubjectID: 10006, Gender: "F", IsDeceased: true}}).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, `INSERT INTO "silver"."patients"`)
	assert.Contains(t, sql, `ON CONFLICT ("subject_id") DO UPDATE SET`)
	assert.Contains(t, sql, `"gender"="excluded"."gender"`)
	assert.Contains(t, sql, `"is_deceased"="excluded"."is_deceased"`)
	assert.Contains(t, sql, `"updated_at"=`)
	assert.NotContains(t, sql, `"created_at"="excluded"`)
	assert.NotContains(t, sql, `"subject_id"="excluded"`)
}

func TestUpsertInputEventsOnCompositeKey(t *testing.T) {
	rows := []InputEvent{
		{SourceSystem: SourceCareVue, RowID: 1},
		{SourceSystem: SourceMetaVision, RowID: 1},
	}
	sql := upsertRows(dryRunDB(t), rows).Statement.SQL.String()

	assert.Contains(t, sql, `INSERT INTO "silver"."inputevents"`)
	assert.Contains(t, sql, `ON CONFLICT ("source_system","row_id") DO UPDATE SET`)
	assert.NotContains(t, sql, `"row_id"="excluded"`)
}

func TestNewUpsertWriterChunksBelowParameterLimit(t *testing.T) {
	w, err := NewUpsertWriter[InputEvent](dryRunDB(t))
	require.NoError(t, err)
	assert.Greater(t, w.chunk, 1000)
	assert.LessOrEqual(t, w.chunk*18, maxBindParams)
}

func TestStoreReaderOrdersByKey(t *testing.T) {
	r := NewStoreReader[bronze.LabEvent](dryRunDB(t), 1000, "row_id")

	var batch []bronze.LabEvent
	sql := r.page(r.db, 2000).Find(&batch).Statement.SQL.String()
	assert.Contains(t, sql, `FROM "bronze"."labevents"`)
	assert.Contains(t, sql, `ORDER BY "row_id"`)
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET")
}

func TestStoreReaderStopsOnEmptyWindow(t *testing.T) {
	r := NewStoreReader[bronze.Patient](dryRunDB(t), 10, "subject_id")

	batches := 0
	for batch, err := range r.Batches(context.Background()) {
		require.NoError(t, err)
		batches += len(batch)
	}
	assert.Zero(t, batches)
}

func TestStoreReaderRejectsBadBatchSize(t *testing.T) {
	r := NewStoreReader[bronze.Patient](dryRunDB(t), 0, "subject_id")
	for _, err := range r.Batches(context.Background()) {
		require.Error(t, err)
	}
}
