package models

// Operator is a leaf predicate kind in a Where tree.
type Operator string

const (
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "not_equals"
	OpContains  Operator = "contains"
	OpIn        Operator = "in"
)

// NoLimit asks the store for every matching document.
const NoLimit = -1

// Where is a filter tree. A node is either a leaf (Field/Op/Value) or a combinator (And/Or).
type Where struct {
	Field string
	Op    Operator
	Value interface{}
	And   []Where
	Or    []Where
}

// IsZero reports whether the node constrains nothing.
func (w Where) IsZero() bool {
	return w.Field == "" && len(w.And) == 0 && len(w.Or) == 0
}

// Eq builds a `field equals value` leaf.
func Eq(field string, value interface{}) Where {
	return Where{Field: field, Op: OpEquals, Value: value}
}

// NotEq builds a `field not_equals value` leaf.
func NotEq(field string, value interface{}) Where {
	return Where{Field: field, Op: OpNotEquals, Value: value}
}

// Contains builds a substring leaf.
func Contains(field, value string) Where {
	return Where{Field: field, Op: OpContains, Value: value}
}

// In builds a membership leaf.
func In(field string, values ...string) Where {
	return Where{Field: field, Op: OpIn, Value: values}
}

// And joins nodes with logical AND, dropping empty ones.
func And(nodes ...Where) Where {
	kept := compact(nodes)
	if len(kept) == 1 {
		return kept[0]
	}
	return Where{And: kept}
}

// Or joins nodes with logical OR, dropping empty ones.
func Or(nodes ...Where) Where {
	kept := compact(nodes)
	if len(kept) == 1 {
		return kept[0]
	}
	return Where{Or: kept}
}

func compact(nodes []Where) []Where {
	kept := make([]Where, 0, len(nodes))
	for _, n := range nodes {
		if !n.IsZero() {
			kept = append(kept, n)
		}
	}
	return kept
}

// FindOptions mirrors the record store find contract.
// Limit 0 is count-only; NoLimit returns everything. Sort is a field name, prefixed with "-" for descending.
type FindOptions struct {
	Where Where
	Sort  string
	Limit int
	Page  int
	Depth int
}

// Document is a raw stored record including its "id".
type Document map[string]interface{}

// ID returns the document identifier.
func (d Document) ID() string {
	if d == nil {
		return ""
	}
	id, _ := d["id"].(string)
	return id
}

// FindResult is a page of documents plus pagination metadata.
type FindResult struct {
	Docs []Document
	Pagination
}
