package repo

import (
	"context"
	"testing"

	"github.com/ecommerce-api/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoCreateDocument(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		price := 9.5
		id, err := store.CreateDocument(context.Background(), model.ProductCollection, model.Product{
			Name:     "Lamp",
			Price:    &price,
			Category: "home",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			t.Errorf("expected an ObjectID hex string, got %q", id)
		}
	})

	mt.Run("write error", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := store.CreateDocument(context.Background(), model.OrderCollection, model.Order{})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestMongoGetDocuments(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns documents with native id", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB)
		oid := primitive.NewObjectID()
		ns := mt.DB.Name() + "." + model.ProductCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: oid}, {Key: "name", Value: "Lamp"}, {Key: "category", Value: "home"}},
		))

		docs, err := store.GetDocuments(context.Background(), model.ProductCollection, map[string]any{"category": "home"}, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("expected 1 document, got %d", len(docs))
		}
		if docs[0][model.NativeIDKey] != oid {
			t.Errorf("expected native id %v, got %v", oid, docs[0][model.NativeIDKey])
		}
		if docs[0]["name"] != "Lamp" {
			t.Errorf("expected name Lamp, got %v", docs[0]["name"])
		}
	})

	mt.Run("sends filter and limit", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB)
		ns := mt.DB.Name() + "." + model.ProductCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		if _, err := store.GetDocuments(context.Background(), model.ProductCollection, map[string]any{"category": "books"}, 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cmd := mt.GetStartedEvent().Command
		if got := cmd.Lookup("find").StringValue(); got != model.ProductCollection {
			t.Errorf("expected find on %s, got %s", model.ProductCollection, got)
		}
		if got := cmd.Lookup("filter", "category").StringValue(); got != "books" {
			t.Errorf("expected category filter books, got %q", got)
		}
		if got, ok := cmd.Lookup("limit").AsInt64OK(); !ok || got != 3 {
			t.Errorf("expected limit 3, got %v", cmd.Lookup("limit"))
		}
	})

	mt.Run("no limit when zero", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB)
		ns := mt.DB.Name() + "." + model.ProductCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		if _, err := store.GetDocuments(context.Background(), model.ProductCollection, nil, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cmd := mt.GetStartedEvent().Command
		if _, err := cmd.LookupErr("limit"); err == nil {
			t.Errorf("expected no limit, got %v", cmd.Lookup("limit"))
		}
		filter, ok := cmd.Lookup("filter").DocumentOK()
		if !ok {
			t.Fatalf("expected a filter document, got %v", cmd.Lookup("filter"))
		}
		if elems, _ := filter.Elements(); len(elems) != 0 {
			t.Errorf("expected an empty filter, got %v", filter)
		}
	})

	mt.Run("command error", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad query",
		}))

		_, err := store.GetDocuments(context.Background(), model.ProductCollection, nil, 20)
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestMongoListCollectionNames(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("names", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB)
		ns := mt.DB.Name() + ".$cmd.listCollections"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "name", Value: "product"}, {Key: "type", Value: "collection"}},
			bson.D{{Key: "name", Value: "order"}, {Key: "type", Value: "collection"}},
		))

		names, err := store.ListCollectionNames(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(names) != 2 || names[0] != "product" || names[1] != "order" {
			t.Errorf("unexpected names %v", names)
		}
		if store.Name() != mt.DB.Name() {
			t.Errorf("expected name %s, got %s", mt.DB.Name(), store.Name())
		}
	})
}
