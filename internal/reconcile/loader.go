// Package reconcile reads the graph store back into canonical rows. Columns
// the store never carried are synthesized with documented defaults so
// downstream consumers see the exact schema the tabular store would serve.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/graphbridge/internal/codec"
	"github.com/agenthands/graphbridge/internal/driver"
	"github.com/agenthands/graphbridge/internal/rows"
)

// ErrLoad wraps any read failure. Callers get a complete table or an
// error, never a partial one.
var ErrLoad = errors.New("graph load failed")

type Loader struct {
	driver driver.GraphDriver
	logger *slog.Logger
}

func NewLoader(d driver.GraphDriver, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{driver: d, logger: logger}
}

// LoadEntities returns every Entity node as a row. The title column is
// always present and first; the column set is the union across all nodes,
// with explicit absent markers where a node lacks a property.
func (l *Loader) LoadEntities(ctx context.Context) ([]rows.Row, error) {
	records, err := l.driver.ReadAll(ctx, driver.ReadNodesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	propRows := make([]map[string]rows.Value, 0, len(records))
	columns := []string{rows.ColTitle}
	seen := map[string]bool{rows.ColTitle: true}

	for _, record := range records {
		raw, ok := record.Get("n")
		if !ok {
			return nil, fmt.Errorf("%w: record missing node column", ErrLoad)
		}
		node, ok := raw.(neo4j.Node)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected node type %T", ErrLoad, raw)
		}
		decoded, err := decodeProps(node.Props)
		if err != nil {
			return nil, err
		}
		for _, name := range sortedKeys(decoded) {
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
		}
		propRows = append(propRows, decoded)
	}

	out := make([]rows.Row, 0, len(propRows))
	for _, props := range propRows {
		var r rows.Row
		for _, col := range columns {
			v, ok := props[col]
			if !ok {
				v = rows.Absent()
			}
			r.Set(col, v)
		}
		out = append(out, r)
	}
	l.logger.Debug("loaded entities from graph store", "count", len(out), "columns", len(columns))
	return out, nil
}

// LoadRelationships returns every RELATED edge as a row carrying the full
// required relationship schema. Stored properties win; a required column
// the store cannot supply is synthesized: id from the row's position,
// human_readable_id as that position, weight 1.0, combined_degree 1, empty
// description, empty text_unit_ids. Positions are stable because the read
// is ordered.
func (l *Loader) LoadRelationships(ctx context.Context) ([]rows.Row, error) {
	records, err := l.driver.ReadAll(ctx, driver.ReadEdgesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	out := make([]rows.Row, 0, len(records))
	for idx, record := range records {
		source, err := endpointTitle(record, "source")
		if err != nil {
			return nil, err
		}
		target, err := endpointTitle(record, "target")
		if err != nil {
			return nil, err
		}
		raw, ok := record.Get("r")
		if !ok {
			return nil, fmt.Errorf("%w: record missing edge column", ErrLoad)
		}
		rel, ok := raw.(neo4j.Relationship)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected edge type %T", ErrLoad, raw)
		}
		props, err := decodeProps(rel.Props)
		if err != nil {
			return nil, err
		}

		var r rows.Row
		r.Set(rows.ColSource, rows.String(source))
		r.Set(rows.ColTarget, rows.String(target))
		for _, col := range rows.RequiredRelationshipColumns[2:] {
			if v, ok := props[col]; ok {
				r.Set(col, v)
				delete(props, col)
				continue
			}
			r.Set(col, synthesizedDefault(col, idx))
		}
		for _, col := range sortedKeys(props) {
			r.Set(col, props[col])
		}
		out = append(out, r)
	}
	l.logger.Debug("loaded relationships from graph store", "count", len(out))
	return out, nil
}

func synthesizedDefault(col string, idx int) rows.Value {
	switch col {
	case rows.ColID:
		return rows.String(fmt.Sprintf("graph_rel_%d", idx))
	case rows.ColHumanReadableID:
		return rows.Number(float64(idx))
	case rows.ColWeight:
		return rows.Number(1.0)
	case rows.ColCombinedDegree:
		return rows.Number(1)
	case rows.ColDescription:
		return rows.String("")
	case rows.ColTextUnitIDs:
		return rows.StringList([]string{})
	default:
		return rows.Absent()
	}
}

func endpointTitle(record *neo4j.Record, key string) (string, error) {
	raw, ok := record.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: record missing %s column", ErrLoad, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, want string", ErrLoad, key, raw)
	}
	return s, nil
}

// decodeProps converts a store property map into row values, dropping the
// exporter's housekeeping timestamp.
func decodeProps(props map[string]any) (map[string]rows.Value, error) {
	decoded := make(map[string]rows.Value, len(props))
	for name, raw := range props {
		col := codec.DecodePropertyName(name)
		if col == driver.WrittenAtProperty {
			continue
		}
		v, err := codec.DecodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: property %q: %v", ErrLoad, col, err)
		}
		decoded[col] = v
	}
	return decoded, nil
}

func sortedKeys(m map[string]rows.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
