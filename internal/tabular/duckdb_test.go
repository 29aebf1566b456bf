package tabular

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/graphbridge/internal/rows"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var a, b rows.Row
	a.Set("title", rows.String("Siddhartha"))
	a.Set("weight", rows.Number(1.5))
	a.Set("text_unit_ids", rows.StringList([]string{"t1", "t2"}))
	b.Set("title", rows.String("Govinda"))

	require.NoError(t, s.WriteTable(ctx, "entities", []rows.Row{a, b}))

	got, err := s.ReadTable(ctx, "entities")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Siddhartha", got[0].Get("title").AsString())
	assert.Equal(t, 1.5, got[0].Get("weight").AsNumber())
	assert.Equal(t, []string{"t1", "t2"}, got[0].Get("text_unit_ids").AsStringList())
	assert.Equal(t, "Govinda", got[1].Get("title").AsString())
}

func TestWriteReplacesTable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var a rows.Row
	a.Set("title", rows.String("old"))
	require.NoError(t, s.WriteTable(ctx, "entities", []rows.Row{a}))

	var b rows.Row
	b.Set("title", rows.String("new"))
	require.NoError(t, s.WriteTable(ctx, "entities", []rows.Row{b}))

	got, err := s.ReadTable(ctx, "entities")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Get("title").AsString())
}

func TestReadMissingTableIsEmpty(t *testing.T) {
	s := openTestStore(t)

	got, err := s.ReadTable(context.Background(), "relationships")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInvalidTableName(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadTable(context.Background(), "bad name; DROP TABLE x")
	assert.Error(t, err)
	assert.Error(t, s.WriteTable(context.Background(), "also-bad", nil))
}
