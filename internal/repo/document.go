package repo

import (
	"context"

	"github.com/ecommerce-api/internal/model"
)

// DocumentStore is a generic gateway over a document database. Documents returned
// by GetDocuments keep the store's native identifier under model.NativeIDKey.
type DocumentStore interface {
	CreateDocument(ctx context.Context, collection string, record any) (string, error)
	GetDocuments(ctx context.Context, collection string, filter map[string]any, limit int64) ([]model.Document, error)

	Name() string
	ListCollectionNames(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
