package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/graphbridge/internal/driver"
	"github.com/agenthands/graphbridge/internal/rows"
)

func entityRow(title string, extra map[string]rows.Value) rows.Row {
	var r rows.Row
	r.Set(rows.ColTitle, rows.String(title))
	for col, v := range extra {
		r.Set(col, v)
	}
	return r
}

func TestExportEntities(t *testing.T) {
	mock := &MockDriver{}
	e := NewExporter(mock, nil)

	entities := []rows.Row{
		entityRow("Siddhartha", map[string]rows.Value{
			"id":   rows.String("e1"),
			"type": rows.String("PERSON"),
		}),
	}

	result, err := e.Export(context.Background(), entities, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.EntitiesWritten)
	assert.Empty(t, result.Failures)
	assert.NotEmpty(t, result.RunID)

	require.Len(t, mock.Batches, 1)
	require.Len(t, mock.Batches[0], 1)
	stmt := mock.Batches[0][0]
	assert.Contains(t, stmt.Query, "MERGE (n:Entity {title: $title})")
	assert.Equal(t, "Siddhartha", stmt.Params["title"])
	assert.Equal(t, map[string]any{"id": "e1", "type": "PERSON"}, stmt.Params["props"])
}

func TestExportPartitionsBatches(t *testing.T) {
	mock := &MockDriver{}
	e := NewExporter(mock, nil)

	var entities []rows.Row
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		entities = append(entities, entityRow(title, nil))
	}

	result, err := e.Export(context.Background(), entities, nil, Options{BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, result.EntitiesWritten)
	assert.Len(t, mock.Batches, 3)
	assert.Len(t, mock.Batches[0], 2)
	assert.Len(t, mock.Batches[2], 1)
}

func TestExportUnsupportedRowFailsAlone(t *testing.T) {
	mock := &MockDriver{}
	e := NewExporter(mock, nil)

	entities := []rows.Row{
		entityRow("a", map[string]rows.Value{"id": rows.String("e1")}),
		entityRow("b", map[string]rows.Value{"meta": rows.FromAny(map[string]any{"nested": true})}),
		entityRow("c", map[string]rows.Value{"id": rows.String("e3")}),
	}

	result, err := e.Export(context.Background(), entities, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.EntitiesWritten)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, DatasetEntities, result.Failures[0].Dataset)
	assert.Equal(t, 1, result.Failures[0].Row)

	require.Len(t, mock.Batches, 1)
	assert.Len(t, mock.Batches[0], 2)
}

func TestExportEmptyPropsGetsHousekeepingWrite(t *testing.T) {
	mock := &MockDriver{}
	e := NewExporter(mock, nil)

	var rel rows.Row
	rel.Set(rows.ColSource, rows.String("Siddhartha"))
	rel.Set(rows.ColTarget, rows.String("Govinda"))

	result, err := e.Export(context.Background(), nil, []rows.Row{rel}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.RelationshipsWritten)

	require.Len(t, mock.Batches, 1)
	assert.Contains(t, mock.Batches[0][0].Query, "SET r.written_at = timestamp()")
}

func TestExportCoercesScalarEndpoints(t *testing.T) {
	mock := &MockDriver{}
	e := NewExporter(mock, nil)

	var rel rows.Row
	rel.Set(rows.ColSource, rows.Number(7))
	rel.Set(rows.ColTarget, rows.String("Govinda"))

	_, err := e.Export(context.Background(), nil, []rows.Row{rel}, Options{})
	require.NoError(t, err)
	require.Len(t, mock.Batches, 1)
	assert.Equal(t, "7", mock.Batches[0][0].Params["source"])
}

func TestExportMissingKeyFailsRow(t *testing.T) {
	mock := &MockDriver{}
	e := NewExporter(mock, nil)

	var r rows.Row
	r.Set("id", rows.String("e1"))

	result, err := e.Export(context.Background(), []rows.Row{r}, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.EntitiesWritten)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 0, result.Failures[0].Row)
}

func TestExportBatchFailureContinues(t *testing.T) {
	mock := &MockDriver{
		FailBatch: 0,
		FailErr:   &driver.WriteError{Row: 1, Cause: errors.New("constraint violated")},
	}
	e := NewExporter(mock, nil)

	var entities []rows.Row
	for _, title := range []string{"a", "b", "c", "d"} {
		entities = append(entities, entityRow(title, nil))
	}

	result, err := e.Export(context.Background(), entities, nil, Options{BatchSize: 2})
	require.NoError(t, err)

	// First batch rolled back, second committed.
	assert.Equal(t, 2, result.EntitiesWritten)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 0, result.Failures[0].Batch)
	assert.Equal(t, 1, result.Failures[0].Row)
	assert.Contains(t, result.Failures[0].Err, "constraint violated")
}

func TestExportNoDriver(t *testing.T) {
	e := NewExporter(nil, nil)
	_, err := e.Export(context.Background(), nil, nil, Options{})
	assert.ErrorIs(t, err, ErrExportUnavailable)
}

func TestExportIdempotentStatements(t *testing.T) {
	// The same input must produce the same upsert statements on every run;
	// idempotency in the store follows from MERGE-by-key.
	entities := []rows.Row{
		entityRow("a", map[string]rows.Value{"id": rows.String("e1")}),
	}

	first := &MockDriver{}
	_, err := NewExporter(first, nil).Export(context.Background(), entities, nil, Options{})
	require.NoError(t, err)

	second := &MockDriver{}
	_, err = NewExporter(second, nil).Export(context.Background(), entities, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, first.Batches, second.Batches)
}
