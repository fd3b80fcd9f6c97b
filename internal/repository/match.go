package repository

import (
	"strings"
	"time"

	"github.com/noah-isme/orgcms-api/internal/models"
)

// matches evaluates a Where tree against a stored document with the same semantics as the SQL compiler.
func matches(doc models.Document, w models.Where) bool {
	switch {
	case len(w.And) > 0:
		for _, node := range w.And {
			if !matches(doc, node) {
				return false
			}
		}
		return true
	case len(w.Or) > 0:
		for _, node := range w.Or {
			if matches(doc, node) {
				return true
			}
		}
		return false
	case w.Field == "":
		return true
	}

	values := lookup(doc, w.Field)
	switch w.Op {
	case models.OpEquals:
		want, ok := scalarString(w.Value)
		if !ok {
			return !anyPresent(values)
		}
		return anyEqual(values, want)
	case models.OpNotEquals:
		want, ok := scalarString(w.Value)
		if !ok {
			return anyPresent(values)
		}
		return !anyEqual(values, want)
	case models.OpContains:
		needle, _ := scalarString(w.Value)
		needle = strings.ToLower(needle)
		for _, v := range values {
			if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
		return false
	case models.OpIn:
		for _, want := range stringList(w.Value) {
			if anyEqual(values, want) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func lookup(doc models.Document, path string) []interface{} {
	head, tail, nested := strings.Cut(path, ".")
	value := doc[head]
	if !nested {
		return []interface{}{value}
	}

	switch v := value.(type) {
	case []interface{}:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]interface{}); ok {
				out = append(out, obj[tail])
			}
		}
		return out
	case map[string]interface{}:
		return []interface{}{v[tail]}
	default:
		return nil
	}
}

func anyPresent(values []interface{}) bool {
	for _, v := range values {
		if v != nil {
			return true
		}
	}
	return false
}

func anyEqual(values []interface{}, want string) bool {
	for _, v := range values {
		if got, ok := scalarString(v); ok && got == want {
			return true
		}
	}
	return false
}

// compareValues orders two stored values; missing values sort after present ones in both directions.
func compareValues(a, b interface{}, desc bool) (less bool, decided bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return false, true
	case b == nil:
		return true, true
	}

	cmp := compareScalars(a, b)
	if cmp == 0 {
		return false, false
	}
	if desc {
		return cmp > 0, true
	}
	return cmp < 0, true
}

func compareScalars(a, b interface{}) int {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	case string:
		if bv, ok := b.(string); ok {
			if at, err := time.Parse(time.RFC3339Nano, av); err == nil {
				if bt, err := time.Parse(time.RFC3339Nano, bv); err == nil {
					return at.Compare(bt)
				}
			}
			return strings.Compare(av, bv)
		}
	}
	as, _ := scalarString(a)
	bs, _ := scalarString(b)
	return strings.Compare(as, bs)
}
