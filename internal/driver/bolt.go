package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// BoltDriver talks to a Neo4j- or Memgraph-compatible store over Bolt.
// One writer batch owns its session at a time; concurrent batches borrow
// separate sessions from the driver's pool.
type BoltDriver struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewBoltDriver opens and verifies a connection. An unreachable endpoint or
// rejected credentials come back wrapped in ErrConnection.
func NewBoltDriver(ctx context.Context, uri, username, password, database string) (*BoltDriver, error) {
	d, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if err := d.VerifyConnectivity(ctx); err != nil {
		_ = d.Close(ctx)
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	slog.Info("connected to graph store", "uri", uri, "database", database)
	return &BoltDriver{driver: d, database: database}, nil
}

func (d *BoltDriver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

func (d *BoltDriver) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return d.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: d.database,
	})
}

func (d *BoltDriver) WriteBatch(ctx context.Context, statements []Statement) error {
	session := d.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for i, stmt := range statements {
			res, err := tx.Run(ctx, stmt.Query, stmt.Params)
			if err != nil {
				return nil, &WriteError{Row: i, Cause: err}
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, &WriteError{Row: i, Cause: err}
			}
		}
		return nil, nil
	})
	return err
}

func (d *BoltDriver) ReadAll(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := d.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return records.([]*neo4j.Record), nil
}
