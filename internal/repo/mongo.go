package repo

import (
	"context"
	"time"

	"github.com/ecommerce-api/internal/model"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoDocumentStore struct {
	db *mongo.Database
}

func NewMongoDocumentStore(db *mongo.Database) *MongoDocumentStore {
	return &MongoDocumentStore{db: db}
}

// ConnectMongo creates a client for uri. The driver connects lazily, so an
// unreachable server is reported by Ping rather than here.
func ConnectMongo(ctx context.Context, uri, dbName string, timeout time.Duration) (*MongoDocumentStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	if timeout > 0 {
		opts.SetServerSelectionTimeout(timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "mongo: connect")
	}
	return NewMongoDocumentStore(client.Database(dbName)), nil
}

func (s *MongoDocumentStore) CreateDocument(ctx context.Context, collection string, record any) (string, error) {
	raw, err := bson.Marshal(record)
	if err != nil {
		return "", errors.Wrap(err, "mongo: encode document")
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return "", errors.Wrap(err, "mongo: encode document")
	}

	now := time.Now().UTC()
	doc["created_at"] = now
	doc["updated_at"] = now

	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", errors.Wrapf(err, "mongo: insert into %s", collection)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return model.IDString(res.InsertedID), nil
}

func (s *MongoDocumentStore) GetDocuments(ctx context.Context, collection string, filter map[string]any, limit int64) ([]model.Document, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.db.Collection(collection).Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "mongo: find in %s", collection)
	}

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, errors.Wrapf(err, "mongo: read %s", collection)
	}

	docs := make([]model.Document, 0, len(raw))
	for _, d := range raw {
		docs = append(docs, model.Document(d))
	}
	return docs, nil
}

func (s *MongoDocumentStore) Name() string {
	return s.db.Name()
}

func (s *MongoDocumentStore) ListCollectionNames(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, "mongo: list collections")
	}
	return names, nil
}

func (s *MongoDocumentStore) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.Client().Ping(ctx, readpref.Primary()), "mongo: ping")
}

func (s *MongoDocumentStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}
