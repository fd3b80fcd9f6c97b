package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/orgcms-api/internal/models"
	"github.com/noah-isme/orgcms-api/internal/repository"
	appErrors "github.com/noah-isme/orgcms-api/pkg/errors"
)

type documentFinder interface {
	Find(ctx context.Context, collection string, opts models.FindOptions) (*models.FindResult, error)
}

// storeFailure logs a record store error and returns the opaque client-facing error.
func storeFailure(logger *zap.Logger, op string, err error) error {
	logger.Error("record store failure", zap.String("op", op), zap.Error(err))
	return appErrors.Store(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrDocumentNotFound)
}

func decodeDocument(doc models.Document, dst interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID(), err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("malformed document %s: %w", doc.ID(), err)
	}
	return nil
}

func decodeDocuments[T any](docs []models.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := decodeDocument(doc, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
