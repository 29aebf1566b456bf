// Package snapshot exports entity and relationship rows into the graph
// store as idempotent, batched upserts. A failed row or batch is recorded
// and skipped; the export keeps going and reports partial success.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/agenthands/graphbridge/internal/codec"
	"github.com/agenthands/graphbridge/internal/driver"
	"github.com/agenthands/graphbridge/internal/rows"
)

// ErrExportUnavailable means no graph store connection exists. The caller
// skips the export step; this is not fatal to the surrounding pipeline.
var ErrExportUnavailable = errors.New("graph export unavailable: no store connection")

const (
	DatasetEntities      = "entities"
	DatasetRelationships = "relationships"
)

const (
	defaultBatchSize = 1000
	defaultWorkers   = 1
)

// Options tune one export call.
type Options struct {
	// BatchSize caps rows per write transaction. Defaults to 1000.
	BatchSize int
	// Workers bounds concurrent batch dispatch. Defaults to sequential.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	return o
}

// RowFailure records one row or batch that did not make it into the store.
// Row is the zero-based index into the submitted dataset; -1 means the
// whole batch failed before any row could be singled out.
type RowFailure struct {
	Dataset string `json:"dataset"`
	Batch   int    `json:"batch"`
	Row     int    `json:"row"`
	Err     string `json:"error"`
}

// ExportResult summarises one export run.
type ExportResult struct {
	RunID                string       `json:"run_id"`
	EntitiesWritten      int          `json:"entities_written"`
	RelationshipsWritten int          `json:"relationships_written"`
	Failures             []RowFailure `json:"failures,omitempty"`
}

type Exporter struct {
	driver driver.GraphDriver
	logger *slog.Logger
}

func NewExporter(d driver.GraphDriver, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{driver: d, logger: logger}
}

// Export upserts all entity rows, then all relationship rows. Re-running
// with identical input leaves the store unchanged: nodes merge on title,
// edges on the ordered endpoint pair.
func (e *Exporter) Export(ctx context.Context, entities, relationships []rows.Row, opts Options) (*ExportResult, error) {
	if e.driver == nil {
		return nil, ErrExportUnavailable
	}
	opts = opts.withDefaults()

	result := &ExportResult{RunID: uuid.New().String()}

	written, failures := e.exportDataset(ctx, DatasetEntities, entities, opts, buildEntityStatement)
	result.EntitiesWritten = written
	result.Failures = append(result.Failures, failures...)

	written, failures = e.exportDataset(ctx, DatasetRelationships, relationships, opts, buildEdgeStatement)
	result.RelationshipsWritten = written
	result.Failures = append(result.Failures, failures...)

	e.logger.Info("graph export finished",
		"run_id", result.RunID,
		"entities_written", result.EntitiesWritten,
		"relationships_written", result.RelationshipsWritten,
		"failures", len(result.Failures))

	return result, ctx.Err()
}

// statementBuilder turns one row into an upsert statement, or fails the
// row with a reason.
type statementBuilder func(r rows.Row) (driver.Statement, error)

type batch struct {
	index      int
	statements []driver.Statement
	rowIndices []int // absolute input index per statement
}

func (e *Exporter) exportDataset(ctx context.Context, dataset string, input []rows.Row, opts Options, build statementBuilder) (int, []RowFailure) {
	var failures []RowFailure

	// Build all statements up front so a bad row fails alone instead of
	// poisoning its batch.
	var batches []batch
	current := batch{index: 0}
	for i := range input {
		stmt, err := build(input[i])
		if err != nil {
			e.logger.Warn("row skipped during export",
				"dataset", dataset, "batch", current.index, "row", i, "cause", err)
			failures = append(failures, RowFailure{Dataset: dataset, Batch: current.index, Row: i, Err: err.Error()})
		} else {
			current.statements = append(current.statements, stmt)
			current.rowIndices = append(current.rowIndices, i)
		}
		if (i+1)%opts.BatchSize == 0 {
			batches = append(batches, current)
			current = batch{index: current.index + 1}
		}
	}
	if len(current.statements) > 0 {
		batches = append(batches, current)
	}

	written := make([]int, len(batches))
	batchFailures := make([][]RowFailure, len(batches))

	var wg sync.WaitGroup
	sem := make(chan struct{}, opts.Workers)
	for bi := range batches {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(b batch, slot int) {
			defer wg.Done()
			defer func() { <-sem }()
			written[slot], batchFailures[slot] = e.writeBatch(ctx, dataset, b)
		}(batches[bi], bi)
	}
	wg.Wait()

	total := 0
	for i := range batches {
		total += written[i]
		failures = append(failures, batchFailures[i]...)
	}
	return total, failures
}

func (e *Exporter) writeBatch(ctx context.Context, dataset string, b batch) (int, []RowFailure) {
	if len(b.statements) == 0 {
		return 0, nil
	}
	err := e.driver.WriteBatch(ctx, b.statements)
	if err == nil {
		return len(b.statements), nil
	}

	row := -1
	var writeErr *driver.WriteError
	if errors.As(err, &writeErr) && writeErr.Row < len(b.rowIndices) {
		row = b.rowIndices[writeErr.Row]
	}
	e.logger.Warn("batch write failed",
		"dataset", dataset, "batch", b.index, "row", row, "cause", err)
	return 0, []RowFailure{{Dataset: dataset, Batch: b.index, Row: row, Err: err.Error()}}
}

func buildEntityStatement(r rows.Row) (driver.Statement, error) {
	title, err := keyString(r, rows.ColTitle)
	if err != nil {
		return driver.Statement{}, err
	}
	props, err := encodeProps(r, rows.ColTitle)
	if err != nil {
		return driver.Statement{}, err
	}
	return driver.UpsertNodeStatement(title, props), nil
}

func buildEdgeStatement(r rows.Row) (driver.Statement, error) {
	source, err := keyString(r, rows.ColSource)
	if err != nil {
		return driver.Statement{}, err
	}
	target, err := keyString(r, rows.ColTarget)
	if err != nil {
		return driver.Statement{}, err
	}
	props, err := encodeProps(r, rows.ColSource, rows.ColTarget)
	if err != nil {
		return driver.Statement{}, err
	}
	return driver.UpsertEdgeStatement(source, target, props), nil
}

// keyString extracts a key column, coercing scalar kinds to their string
// form the way the upstream pipeline would print them.
func keyString(r rows.Row, col string) (string, error) {
	v := r.Get(col)
	switch v.Kind() {
	case rows.KindString:
		return v.AsString(), nil
	case rows.KindNumber:
		return strconv.FormatFloat(v.AsNumber(), 'f', -1, 64), nil
	case rows.KindBool:
		return strconv.FormatBool(v.AsBool()), nil
	case rows.KindAbsent:
		return "", fmt.Errorf("missing key column %q", col)
	default:
		return "", fmt.Errorf("key column %q is not a scalar", col)
	}
}

// encodeProps collects every non-key, non-absent column. One unsupported
// value fails the whole row.
func encodeProps(r rows.Row, keyCols ...string) (map[string]any, error) {
	props := make(map[string]any)
	for _, col := range r.Columns() {
		if isKey(col, keyCols) {
			continue
		}
		v := r.Get(col)
		if v.IsAbsent() {
			continue
		}
		encoded, err := codec.EncodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		props[col] = encoded
	}
	return props, nil
}

func isKey(col string, keyCols []string) bool {
	for _, k := range keyCols {
		if col == k {
			return true
		}
	}
	return false
}
