package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Statement is one parameterized write against the graph store.
type Statement struct {
	Query  string
	Params map[string]any
}

// GraphDriver is the narrow transport contract the bridge needs from a
// property-graph store: transactional batch writes and bulk reads.
type GraphDriver interface {
	// WriteBatch executes all statements inside a single write transaction;
	// either every statement commits or the whole batch rolls back. A
	// statement failure is reported as a *WriteError carrying the index of
	// the offending statement.
	WriteBatch(ctx context.Context, statements []Statement) error

	// ReadAll executes one read transaction and returns the eagerly
	// collected records.
	ReadAll(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error)

	Close(ctx context.Context) error
}
