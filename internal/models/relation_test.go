package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationNormalizesBothShapes(t *testing.T) {
	var bare, embedded Member
	require.NoError(t, json.Unmarshal([]byte(`{"id":"m1","position":"pos-1"}`), &bare))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"m2","position":{"id":"pos-1","title":"Chair","order":0}}`), &embedded))

	assert.Equal(t, "pos-1", bare.Position.ID())
	assert.Equal(t, "pos-1", embedded.Position.ID())
	assert.False(t, bare.Position.Populated())
	assert.True(t, embedded.Position.Populated())

	var pos Position
	ok, err := embedded.Position.Decode(&pos)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Chair", pos.Title)

	ok, err = bare.Position.Decode(&pos)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRelationNullAndMarshal(t *testing.T) {
	var m Member
	require.NoError(t, json.Unmarshal([]byte(`{"id":"m1","position":null}`), &m))
	assert.True(t, m.Position.IsZero())

	out, err := json.Marshal(Ref("abc"))
	require.NoError(t, err)
	assert.JSONEq(t, `"abc"`, string(out))

	var r Relation
	assert.Error(t, json.Unmarshal([]byte(`42`), &r))
}

func TestRelationID(t *testing.T) {
	assert.Equal(t, "x", RelationID("x"))
	assert.Equal(t, "y", RelationID(map[string]interface{}{"id": "y"}))
	assert.Equal(t, "z", RelationID(Document{"id": "z"}))
	assert.Equal(t, "", RelationID(7))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)

	countOnly := NewPagination(1, 0, 42)
	assert.Equal(t, 42, countOnly.TotalDocs)
	assert.Equal(t, 1, countOnly.TotalPages)
	assert.False(t, countOnly.HasNextPage)
}

func TestWhereCombinatorsDropEmptyNodes(t *testing.T) {
	w := And(Eq("status", "published"), Where{})
	assert.Equal(t, "status", w.Field)

	o := Or(Contains("title", "a"), Contains("excerpt", "a"))
	require.Len(t, o.Or, 2)
	assert.True(t, And().IsZero())
}
