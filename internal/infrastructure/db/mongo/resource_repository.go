package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
)

// ResourceRepository stores the documents of one resource in a collection
// named after it. The document id is stored as _id.
type ResourceRepository struct {
	col *mongo.Collection
}

func NewResourceRepository(db *mongo.Database, resource domain.Resource) *ResourceRepository {
	return &ResourceRepository{col: db.Collection(string(resource))}
}

func toBSON(doc domain.Document) bson.M {
	out := bson.M{}
	for k, v := range doc {
		if k == domain.FieldID {
			out["_id"] = v
			continue
		}
		out[k] = v
	}
	return out
}

func fromBSON(m bson.M) domain.Document {
	out := domain.Document{}
	for k, v := range m {
		if k == "_id" {
			out[domain.FieldID] = v
			continue
		}
		out[k] = plain(v)
	}
	return out
}

// plain converts nested driver types into the map and slice types the rest
// of the code uses for JSON-like documents.
func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = plain(e)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plain(e.Value)
		}
		return m
	case bson.A:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = plain(e)
		}
		return s
	default:
		return v
	}
}

func (r *ResourceRepository) Insert(ctx context.Context, doc domain.Document) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toBSON(doc)); err != nil {
		return fmt.Errorf("insert %s: %w", r.col.Name(), err)
	}
	return nil
}

func (r *ResourceRepository) FindByID(ctx context.Context, id string) (domain.Document, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ResourceRepository) FindOne(ctx context.Context, field, value string) (domain.Document, error) {
	if field == domain.FieldID {
		field = "_id"
	}
	return r.findOne(ctx, bson.M{field: value})
}

// List applies equality filters and a case-insensitive regex search on
// name, title and description, sorted by creation time.
func (r *ResourceRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Document, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	for field, value := range filter.Equals {
		query[field] = equalsRendered(value)
	}
	if filter.Search != "" {
		pattern := primitiveRegex(filter.Search)
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.col.Name(), err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: domain.FieldCreatedAt, Value: 1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find %s: %w", r.col.Name(), err)
	}
	defer cur.Close(ctx)

	items := []domain.Document{}
	for cur.Next(ctx) {
		var m bson.M
		if err := cur.Decode(&m); err != nil {
			return nil, 0, fmt.Errorf("decode %s: %w", r.col.Name(), err)
		}
		items = append(items, fromBSON(m))
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ResourceRepository) Replace(ctx context.Context, doc domain.Document) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID()}, toBSON(doc))
	if err != nil {
		return fmt.Errorf("replace %s: %w", r.col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ResourceRepository) findOne(ctx context.Context, filter bson.M) (domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m bson.M
	if err := r.col.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find %s: %w", r.col.Name(), err)
	}
	return fromBSON(m), nil
}

// equalsRendered matches a field whose value renders as s, so that query
// string filters also match stored booleans and numbers.
func equalsRendered(s string) bson.M {
	candidates := bson.A{s}
	switch s {
	case "true":
		candidates = append(candidates, true)
	case "false":
		candidates = append(candidates, false)
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		candidates = append(candidates, n, int64(n), int32(n))
	}
	return bson.M{"$in": candidates}
}

func primitiveRegex(search string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
}
