package model

import (
	"testing"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWithPublicIDObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := Document{NativeIDKey: oid, "name": "Lamp"}

	out := doc.WithPublicID()

	if _, ok := out[NativeIDKey]; ok {
		t.Error("expected native id to be removed")
	}
	if out["id"] != oid.Hex() {
		t.Errorf("expected id %s, got %v", oid.Hex(), out["id"])
	}
	if out["name"] != "Lamp" {
		t.Errorf("expected other fields to survive, got %v", out)
	}
}

func TestWithPublicIDUUID(t *testing.T) {
	id := uuid.New()
	out := Document{NativeIDKey: id}.WithPublicID()

	if out["id"] != id.String() {
		t.Errorf("expected id %s, got %v", id, out["id"])
	}
}

func TestWithPublicIDMissing(t *testing.T) {
	out := Document{"name": "Lamp"}.WithPublicID()

	if _, ok := out["id"]; ok {
		t.Error("expected no id to be invented")
	}
}

func TestCollections(t *testing.T) {
	got := Collections()
	want := []string{"user", "product", "order"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}
