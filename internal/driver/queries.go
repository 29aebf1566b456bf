package driver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/graphbridge/internal/codec"
)

const (
	// NodeLabel tags every entity node written by the bridge.
	NodeLabel = "Entity"

	// EdgeType tags every relationship edge written by the bridge.
	EdgeType = "RELATED"

	// WrittenAtProperty is the housekeeping property set when a row has no
	// other non-key properties, so the upsert SET clause is never empty.
	WrittenAtProperty = "written_at"
)

// Read statements. ORDER BY keeps read order stable for a fixed store
// state, which position-derived identifier synthesis depends on.
const (
	ReadNodesQuery = "MATCH (n:" + NodeLabel + ") RETURN n ORDER BY n.title"

	ReadEdgesQuery = "MATCH (s:" + NodeLabel + ")-[r:" + EdgeType + "]->(t:" + NodeLabel + ") " +
		"RETURN s.title AS source, t.title AS target, r ORDER BY s.title, t.title"
)

// UpsertNodeStatement builds a find-or-create by title followed by a SET of
// every non-key property. Property names are escaped in the statement text;
// values travel in the $props map parameter, so re-running with identical
// rows overwrites properties with identical values.
func UpsertNodeStatement(title string, props map[string]any) Statement {
	query := fmt.Sprintf("MERGE (n:%s {title: $title}) SET %s", NodeLabel, setClause("n", props))
	return Statement{
		Query:  query,
		Params: map[string]any{"title": title, "props": props},
	}
}

// UpsertEdgeStatement finds or creates both endpoint nodes by title, then
// the edge keyed on the ordered endpoint pair, then sets the non-key
// properties. Creating bare endpoints covers edges referencing nodes the
// entity pass never produced; the statement must not fail on them.
func UpsertEdgeStatement(source, target string, props map[string]any) Statement {
	query := fmt.Sprintf(
		"MERGE (s:%s {title: $source}) MERGE (t:%s {title: $target}) MERGE (s)-[r:%s]->(t) SET %s",
		NodeLabel, NodeLabel, EdgeType, setClause("r", props),
	)
	return Statement{
		Query:  query,
		Params: map[string]any{"source": source, "target": target, "props": props},
	}
}

func setClause(alias string, props map[string]any) string {
	if len(props) == 0 {
		return fmt.Sprintf("%s.%s = timestamp()", alias, WrittenAtProperty)
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	clauses := make([]string, 0, len(names))
	for _, name := range names {
		escaped := codec.EncodePropertyName(name)
		clauses = append(clauses, fmt.Sprintf("%s.%s = $props.%s", alias, escaped, escaped))
	}
	return strings.Join(clauses, ", ")
}
