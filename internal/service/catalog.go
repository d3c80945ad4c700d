package service

import (
	"context"
	"errors"

	"github.com/ecommerce-api/internal/events"
	"github.com/ecommerce-api/internal/logger"
	"github.com/ecommerce-api/internal/model"
	"github.com/ecommerce-api/internal/repo"
	"go.uber.org/zap"
)

const DefaultProductLimit = 20

// ErrStoreUnavailable is returned when the process started without a store handle.
var ErrStoreUnavailable = errors.New("database not available")

type CatalogService struct {
	store     repo.DocumentStore
	publisher events.Publisher
}

// NewCatalogService wires the handlers to a store. store may be nil when the
// connection could not be set up; publisher may be nil to disable events.
func NewCatalogService(store repo.DocumentStore, publisher events.Publisher) *CatalogService {
	return &CatalogService{store: store, publisher: publisher}
}

type ListProductsQuery struct {
	Category string `form:"category"`
	Limit    int64  `form:"limit,default=20" binding:"min=1"`
}

func (s *CatalogService) CreateProduct(ctx context.Context, product model.Product) (string, error) {
	if product.InStock == nil {
		inStock := true
		product.InStock = &inStock
	}
	return s.create(ctx, model.ProductCollection, product)
}

func (s *CatalogService) CreateOrder(ctx context.Context, order model.Order) (string, error) {
	return s.create(ctx, model.OrderCollection, order)
}

// ListProducts returns products with their identifiers exposed as "id".
func (s *CatalogService) ListProducts(ctx context.Context, q ListProductsQuery) ([]model.Document, error) {
	log := logger.FromContext(ctx)

	if s.store == nil {
		return nil, ErrStoreUnavailable
	}

	filter := map[string]any{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultProductLimit
	}

	docs, err := s.store.GetDocuments(ctx, model.ProductCollection, filter, limit)
	if err != nil {
		log.Error("store: failed to list products", zap.String("category", q.Category), zap.Error(err))
		return nil, err
	}

	items := make([]model.Document, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.WithPublicID())
	}
	return items, nil
}

func (s *CatalogService) Collections() []string {
	return model.Collections()
}

func (s *CatalogService) create(ctx context.Context, collection string, record any) (string, error) {
	log := logger.FromContext(ctx)

	if s.store == nil {
		return "", ErrStoreUnavailable
	}

	id, err := s.store.CreateDocument(ctx, collection, record)
	if err != nil {
		log.Error("store: failed to create document", zap.String("collection", collection), zap.Error(err))
		return "", err
	}
	log.Info("document created", zap.String("collection", collection), zap.String("document_id", id))

	if s.publisher != nil {
		channel := events.CreatedChannel(collection)
		event := model.CreatedEvent{Collection: collection, ID: id, Record: record}
		if err := s.publisher.PublishCreated(ctx, event); err != nil {
			log.Error("failed to publish created event", zap.String("channel", channel), zap.Error(err))
		} else {
			log.Info("event published", zap.String("channel", channel), zap.String("document_id", id))
		}
	}

	return id, nil
}
