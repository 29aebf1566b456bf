package snapshot

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/graphbridge/internal/driver"
)

type MockDriver struct {
	Batches [][]driver.Statement
	// FailBatch makes the Nth WriteBatch call (zero-based) return FailErr.
	FailBatch int
	FailErr   error

	calls int
}

func (m *MockDriver) WriteBatch(ctx context.Context, statements []driver.Statement) error {
	call := m.calls
	m.calls++
	if m.FailErr != nil && call == m.FailBatch {
		return m.FailErr
	}
	m.Batches = append(m.Batches, statements)
	return nil
}

func (m *MockDriver) ReadAll(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	return nil, nil
}

func (m *MockDriver) Close(ctx context.Context) error { return nil }
