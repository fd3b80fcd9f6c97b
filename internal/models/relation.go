package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Relation is a reference to another record. Depending on population depth the store
// yields either a bare identifier or the embedded record; both normalize to the same ID.
type Relation struct {
	id     string
	inline json.RawMessage
}

// Ref builds a relation holding only an identifier.
func Ref(id string) Relation {
	return Relation{id: id}
}

// ID returns the referenced identifier regardless of representation.
func (r Relation) ID() string {
	return r.id
}

// IsZero reports whether the relation is unset.
func (r Relation) IsZero() bool {
	return r.id == "" && len(r.inline) == 0
}

// Populated reports whether the relation carries the embedded record.
func (r Relation) Populated() bool {
	return len(r.inline) > 0
}

// Decode unmarshals the embedded record into dst. It returns false for bare references.
func (r Relation) Decode(dst interface{}) (bool, error) {
	if !r.Populated() {
		return false, nil
	}
	if err := json.Unmarshal(r.inline, dst); err != nil {
		return false, fmt.Errorf("decode relation %s: %w", r.id, err)
	}
	return true, nil
}

func (r *Relation) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*r = Relation{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '"':
		return json.Unmarshal(trimmed, &r.id)
	case '{':
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(trimmed, &head); err != nil {
			return err
		}
		r.id = head.ID
		r.inline = append(json.RawMessage(nil), trimmed...)
		return nil
	default:
		return fmt.Errorf("relation: unexpected JSON %s", string(trimmed))
	}
}

func (r Relation) MarshalJSON() ([]byte, error) {
	if r.Populated() {
		return r.inline, nil
	}
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}

// RelationID extracts an identifier from a raw document value that may be a string or an embedded record.
func RelationID(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]interface{}:
		id, _ := v["id"].(string)
		return id
	case Document:
		return v.ID()
	default:
		return ""
	}
}
