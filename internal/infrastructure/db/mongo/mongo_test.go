package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/autox/marketplace-client/internal/core/domain"
)

func TestDocumentBSONMapping(t *testing.T) {
	doc := domain.Document{domain.FieldID: "v1", "name": "JCB 3CX"}

	m := toBSON(doc)
	if m["_id"] != "v1" {
		t.Fatalf("expected _id mapped, got %v", m)
	}
	if _, ok := m[domain.FieldID]; ok {
		t.Fatalf("id must not be stored twice")
	}

	back := fromBSON(bson.M{"_id": "v1", "name": "JCB 3CX"})
	if back.ID() != "v1" || back["name"] != "JCB 3CX" {
		t.Fatalf("unexpected document %v", back)
	}
}

func TestMongoUserMapping(t *testing.T) {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	u := &domain.User{ID: "u1", Email: "Amal@Example.lk", Role: domain.RoleAdmin, CreatedAt: created}

	m := toMongoUser(u)
	if m.Email != "amal@example.lk" {
		t.Fatalf("email must be stored lower-case, got %s", m.Email)
	}
	back := m.toDomain()
	if !back.CreatedAt.Equal(created) || back.Role != domain.RoleAdmin {
		t.Fatalf("unexpected round trip: %+v", back)
	}
	if !back.UpdatedAt.IsZero() {
		t.Fatalf("zero timestamps must stay zero")
	}
}

func TestPrimitiveRegexEscapes(t *testing.T) {
	re := primitiveRegex("a.b")
	if re["$regex"] != `a\.b` || re["$options"] != "i" {
		t.Fatalf("unexpected regex %v", re)
	}
}

func TestFromBSONFlattensNestedDriverTypes(t *testing.T) {
	back := fromBSON(bson.M{
		"_id": "r1",
		"status_history": bson.A{
			bson.M{"status": "pending"},
			bson.D{{Key: "status", Value: "accepted"}},
		},
	})

	history, ok := back["status_history"].([]any)
	if !ok || len(history) != 2 {
		t.Fatalf("expected []any history, got %T", back["status_history"])
	}
	for i, want := range []string{"pending", "accepted"} {
		entry, ok := history[i].(map[string]any)
		if !ok || entry["status"] != want {
			t.Fatalf("entry %d: got %#v", i, history[i])
		}
	}
}

func TestEqualsRendered(t *testing.T) {
	in := equalsRendered("true")["$in"].(bson.A)
	if len(in) != 2 || in[0] != "true" || in[1] != true {
		t.Fatalf("unexpected candidates %v", in)
	}

	in = equalsRendered("12")["$in"].(bson.A)
	if len(in) != 4 || in[1] != float64(12) || in[2] != int64(12) {
		t.Fatalf("unexpected candidates %v", in)
	}

	in = equalsRendered("Kandy")["$in"].(bson.A)
	if len(in) != 1 {
		t.Fatalf("expected only the string candidate, got %v", in)
	}
}
