package repository

import (
	"errors"
	"regexp"
	"sort"

	"github.com/noah-isme/orgcms-api/internal/models"
)

var (
	// ErrDocumentNotFound is returned when a lookup by id matches nothing.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDuplicateDocument is returned when a unique slug is reused within a collection.
	ErrDuplicateDocument = errors.New("duplicate document")
	// ErrInvalidField is returned for field names that cannot be addressed safely.
	ErrInvalidField = errors.New("invalid field name")
)

// relations maps collection or global slug -> relation field -> target collection.
// Globals register none: settings keep logo and favicon as plain URLs.
var relations = map[string]map[string]string{
	models.CollectionPositions: {
		"period": models.CollectionPeriods,
	},
	models.CollectionMembers: {
		"position": models.CollectionPositions,
		"period":   models.CollectionPeriods,
	},
	models.CollectionPosts: {
		"author":  models.CollectionUsers,
		"gallery": models.CollectionGalleries,
	},
	models.CollectionActivityLogs: {
		"user": models.CollectionUsers,
	},
}

// hiddenFields never leave the store, even when embedded through a relation.
var hiddenFields = map[string][]string{
	models.CollectionUsers: {"password", "hash", "salt", "resetPasswordToken"},
}

// reservedFields live in columns rather than in the JSON body.
var reservedFields = []string{"id", "createdAt", "updatedAt"}

var (
	fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	pathPattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
)

func relationFields(collection string) []string {
	fields := make([]string, 0, len(relations[collection]))
	for field := range relations[collection] {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func stripHidden(collection string, doc models.Document) {
	for _, field := range hiddenFields[collection] {
		delete(doc, field)
	}
}
