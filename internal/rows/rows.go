// Package rows defines the canonical tabular record exchanged between the
// indexing pipeline, the graph store bridge, and query consumers. A Row is
// an ordered mapping from column name to a tagged Value; required columns
// are fixed per dataset, extra columns round-trip untouched.
package rows

// Column names required on every entity row.
const (
	ColTitle           = "title"
	ColID              = "id"
	ColHumanReadableID = "human_readable_id"
)

// Column names required on every relationship row, beyond the shared ones.
const (
	ColSource         = "source"
	ColTarget         = "target"
	ColWeight         = "weight"
	ColCombinedDegree = "combined_degree"
	ColDescription    = "description"
	ColTextUnitIDs    = "text_unit_ids"
)

// RequiredEntityColumns lists the columns every entity row must carry.
var RequiredEntityColumns = []string{ColTitle, ColID, ColHumanReadableID}

// RequiredRelationshipColumns lists the columns every relationship row must
// carry, in canonical order.
var RequiredRelationshipColumns = []string{
	ColSource,
	ColTarget,
	ColID,
	ColHumanReadableID,
	ColWeight,
	ColCombinedDegree,
	ColDescription,
	ColTextUnitIDs,
}

// Row is an ordered column -> Value mapping. The zero value is ready to use.
// Column order is first-set order; Set on an existing column overwrites in
// place without reordering.
type Row struct {
	cols []string
	vals map[string]Value
}

func (r *Row) Set(col string, v Value) {
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, ok := r.vals[col]; !ok {
		r.cols = append(r.cols, col)
	}
	r.vals[col] = v
}

// Get returns the value for col, or an Absent value when the column is not
// present on this row.
func (r *Row) Get(col string) Value {
	if r.vals == nil {
		return Absent()
	}
	v, ok := r.vals[col]
	if !ok {
		return Absent()
	}
	return v
}

func (r *Row) Has(col string) bool {
	_, ok := r.vals[col]
	return ok
}

// Columns returns the column names in order. The slice is shared; callers
// must not mutate it.
func (r *Row) Columns() []string { return r.cols }

func (r *Row) Len() int { return len(r.cols) }

// Equal reports whether two rows carry the same columns with equal values,
// ignoring column order.
func (r *Row) Equal(o *Row) bool {
	if len(r.cols) != len(o.cols) {
		return false
	}
	for _, col := range r.cols {
		if !r.Get(col).Equal(o.Get(col)) {
			return false
		}
	}
	return true
}
