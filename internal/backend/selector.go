// Package backend chooses, per dataset, whether rows come from the graph
// store or the tabular store, falling back when the preferred source fails
// or turns out empty. Consumers never see which backend served them except
// through logged diagnostics.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agenthands/graphbridge/internal/config"
	"github.com/agenthands/graphbridge/internal/rows"
)

// ErrNoDataAvailable is fatal: both the graph store and the tabular store
// failed to produce rows.
var ErrNoDataAvailable = errors.New("no data available from any backend")

type DatasetKind string

const (
	DatasetEntities      DatasetKind = "entities"
	DatasetRelationships DatasetKind = "relationships"
)

func (k DatasetKind) Valid() bool {
	return k == DatasetEntities || k == DatasetRelationships
}

// TableStore is the tabular collaborator. The selector only reads from it.
type TableStore interface {
	ReadTable(ctx context.Context, name string) ([]rows.Row, error)
	WriteTable(ctx context.Context, name string, rs []rows.Row) error
}

// GraphLoader is satisfied by reconcile.Loader.
type GraphLoader interface {
	LoadEntities(ctx context.Context) ([]rows.Row, error)
	LoadRelationships(ctx context.Context) ([]rows.Row, error)
}

type Selector struct {
	loader GraphLoader // nil when no graph connection exists
	tables TableStore
	logger *slog.Logger
}

func NewSelector(loader GraphLoader, tables TableStore, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{loader: loader, tables: tables, logger: logger}
}

// Resolve returns the rows for one dataset. With graph-backed reads
// configured it tries the graph store first and falls back to the tabular
// store at most once, logging a single degraded-mode warning. Configuration
// is re-evaluated fresh on every call; no fallback state is remembered.
func (s *Selector) Resolve(ctx context.Context, kind DatasetKind, cfg config.QueryConfig) ([]rows.Row, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown dataset kind %q", kind)
	}

	if !cfg.GraphBacked {
		loaded, err := s.readTable(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("%w: tabular: %v", ErrNoDataAvailable, err)
		}
		return loaded, nil
	}

	graphRows, graphErr := s.loadGraph(ctx, kind)
	if graphErr == nil && len(graphRows) > 0 {
		return graphRows, nil
	}

	tabularRows, tabularErr := s.readTable(ctx, kind)
	if graphErr != nil {
		if tabularErr != nil {
			return nil, fmt.Errorf("%w: graph: %v; tabular: %v", ErrNoDataAvailable, graphErr, tabularErr)
		}
		s.logger.Warn("degraded mode: graph load failed, serving from tabular store",
			"dataset", kind, "cause", graphErr)
		return tabularRows, nil
	}

	// Graph read succeeded but came back empty. Prefer the tabular store
	// when it actually has data; an empty graph with an empty table is a
	// legitimate empty dataset.
	if tabularErr == nil && len(tabularRows) > 0 {
		s.logger.Warn("degraded mode: graph store empty, serving from tabular store",
			"dataset", kind)
		return tabularRows, nil
	}
	return graphRows, nil
}

func (s *Selector) loadGraph(ctx context.Context, kind DatasetKind) ([]rows.Row, error) {
	if s.loader == nil {
		return nil, errors.New("no graph store connection")
	}
	if kind == DatasetEntities {
		return s.loader.LoadEntities(ctx)
	}
	return s.loader.LoadRelationships(ctx)
}

func (s *Selector) readTable(ctx context.Context, kind DatasetKind) ([]rows.Row, error) {
	if s.tables == nil {
		return nil, errors.New("no tabular store configured")
	}
	return s.tables.ReadTable(ctx, string(kind))
}
