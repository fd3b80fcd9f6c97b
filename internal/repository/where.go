package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/noah-isme/orgcms-api/internal/models"
)

// sqlBuilder compiles a Where tree into a Postgres predicate over the documents table.
type sqlBuilder struct {
	args []interface{}
}

func (b *sqlBuilder) bind(value interface{}) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *sqlBuilder) compile(w models.Where) (string, error) {
	switch {
	case len(w.And) > 0:
		return b.group(w.And, " AND ")
	case len(w.Or) > 0:
		return b.group(w.Or, " OR ")
	case w.Field == "":
		return "", nil
	}

	if !pathPattern.MatchString(w.Field) {
		return "", fmt.Errorf("%w: %q", ErrInvalidField, w.Field)
	}

	if head, tail, nested := strings.Cut(w.Field, "."); nested {
		return b.arrayLeaf(head, tail, w)
	}

	expr := "data->>'" + w.Field + "'"
	if w.Field == "id" {
		expr = "id"
	}
	return b.leaf(expr, w)
}

func (b *sqlBuilder) group(nodes []models.Where, sep string) (string, error) {
	parts := make([]string, 0, len(nodes))
	for _, node := range nodes {
		part, err := b.compile(node)
		if err != nil {
			return "", err
		}
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *sqlBuilder) leaf(expr string, w models.Where) (string, error) {
	switch w.Op {
	case models.OpEquals:
		value, ok := scalarString(w.Value)
		if !ok {
			return expr + " IS NULL", nil
		}
		return expr + " = " + b.bind(value), nil
	case models.OpNotEquals:
		value, ok := scalarString(w.Value)
		if !ok {
			return expr + " IS NOT NULL", nil
		}
		return expr + " IS DISTINCT FROM " + b.bind(value), nil
	case models.OpContains:
		value, _ := scalarString(w.Value)
		return expr + " ILIKE " + b.bind("%"+escapeLike(value)+"%"), nil
	case models.OpIn:
		return expr + " = ANY(" + b.bind(pq.Array(stringList(w.Value))) + ")", nil
	default:
		return "", fmt.Errorf("unsupported operator %q", w.Op)
	}
}

// arrayLeaf matches a field inside an array of objects, e.g. tags.tag.
func (b *sqlBuilder) arrayLeaf(head, tail string, w models.Where) (string, error) {
	op := w.Op
	if op == models.OpNotEquals {
		op = models.OpEquals
	}
	cond, err := b.leaf("elem->>'"+tail+"'", models.Where{Field: tail, Op: op, Value: w.Value})
	if err != nil {
		return "", err
	}
	exists := fmt.Sprintf("EXISTS (SELECT 1 FROM jsonb_array_elements(COALESCE(data->'%s', '[]'::jsonb)) AS elem WHERE %s)", head, cond)
	if w.Op == models.OpNotEquals {
		return "NOT " + exists, nil
	}
	return exists, nil
}

// orderClause always ends with the insertion sequence so ties keep a stable order.
func orderClause(sortKey string) (string, error) {
	if sortKey == "" {
		return "ORDER BY seq ASC", nil
	}
	field, desc := parseSort(sortKey)
	if !fieldPattern.MatchString(field) {
		return "", fmt.Errorf("%w: sort %q", ErrInvalidField, sortKey)
	}

	var expr string
	switch field {
	case "id":
		expr = "id"
	case "createdAt":
		expr = "created_at"
	case "updatedAt":
		expr = "updated_at"
	default:
		expr = "data->'" + field + "'"
	}

	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s NULLS LAST, seq ASC", expr, dir), nil
}
