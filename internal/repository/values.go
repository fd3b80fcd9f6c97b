package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/orgcms-api/internal/models"
)

// normalizeDocument converts arbitrary input into its stored JSON shape and collapses
// embedded relation objects into bare identifiers.
func normalizeDocument(collection string, data models.Document) (models.Document, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", collection, err)
	}
	doc := models.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s document: %w", collection, err)
	}
	for field := range relations[collection] {
		if value, ok := doc[field]; ok && value != nil {
			doc[field] = models.RelationID(value)
		}
	}
	return doc, nil
}

// bodyOf drops column-backed fields from a document before it is written as JSON.
func bodyOf(doc models.Document) models.Document {
	body := make(models.Document, len(doc))
	for k, v := range doc {
		body[k] = v
	}
	for _, field := range reservedFields {
		delete(body, field)
	}
	return body
}

func cloneDocument(doc models.Document) models.Document {
	out := make(models.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// scalarString renders a filter or stored value the way Postgres renders data->>'field'.
func scalarString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), true
	case fmt.Stringer:
		return v.String(), true
	case map[string]interface{}, models.Document:
		id := models.RelationID(v)
		return id, id != ""
	default:
		return fmt.Sprint(v), true
	}
}

func stringList(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := scalarString(item); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		if s, ok := scalarString(v); ok {
			return []string{s}
		}
		return nil
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func parseSort(sortKey string) (field string, desc bool) {
	if strings.HasPrefix(sortKey, "-") {
		return strings.TrimPrefix(sortKey, "-"), true
	}
	return sortKey, false
}
