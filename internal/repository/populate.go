package repository

import (
	"context"

	"github.com/noah-isme/orgcms-api/internal/models"
)

// documentLoader fetches documents of one collection by identifier.
type documentLoader interface {
	loadByIDs(ctx context.Context, collection string, ids []string) (map[string]models.Document, error)
}

// populate replaces relation identifiers with the referenced documents, recursing depth levels.
// References whose target no longer exists keep the bare identifier.
func populate(ctx context.Context, loader documentLoader, collection string, docs []models.Document, depth int) error {
	if depth <= 0 || len(docs) == 0 {
		return nil
	}

	for _, field := range relationFields(collection) {
		target := relations[collection][field]

		seen := make(map[string]struct{})
		var ids []string
		for _, doc := range docs {
			id, ok := doc[field].(string)
			if !ok || id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			continue
		}

		loaded, err := loader.loadByIDs(ctx, target, ids)
		if err != nil {
			return err
		}

		related := make([]models.Document, 0, len(loaded))
		for _, id := range ids {
			if rel, ok := loaded[id]; ok {
				related = append(related, rel)
			}
		}
		if err := populate(ctx, loader, target, related, depth-1); err != nil {
			return err
		}

		for _, doc := range docs {
			id, ok := doc[field].(string)
			if !ok {
				continue
			}
			if rel, found := loaded[id]; found {
				doc[field] = map[string]interface{}(rel)
			}
		}
	}
	return nil
}
