package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
)

// searchFields are matched by ListFilter.Search.
var searchFields = []string{"name", "title", "description"}

// ResourceRepository keeps documents in insertion order.
type ResourceRepository struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]domain.Document
}

func NewResourceRepository() *ResourceRepository {
	return &ResourceRepository{docs: make(map[string]domain.Document)}
}

func cloneDocument(d domain.Document) domain.Document {
	if d == nil {
		return nil
	}
	out := make(domain.Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func (r *ResourceRepository) Insert(_ context.Context, doc domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := doc.ID()
	if id == "" {
		return fmt.Errorf("insert document: missing id")
	}
	if _, exists := r.docs[id]; exists {
		return fmt.Errorf("insert document %s: duplicate id", id)
	}
	r.docs[id] = cloneDocument(doc)
	r.order = append(r.order, id)
	return nil
}

func (r *ResourceRepository) FindByID(_ context.Context, id string) (domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (r *ResourceRepository) FindOne(_ context.Context, field, value string) (domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		doc := r.docs[id]
		if fmt.Sprint(doc[field]) == value {
			return cloneDocument(doc), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ResourceRepository) List(_ context.Context, filter ports.ListFilter) ([]domain.Document, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.Document
	for _, id := range r.order {
		doc := r.docs[id]
		if matches(doc, filter) {
			matched = append(matched, doc)
		}
	}

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start < 0 || start >= len(matched) {
		return []domain.Document{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]domain.Document, 0, end-start)
	for _, doc := range matched[start:end] {
		page = append(page, cloneDocument(doc))
	}
	return page, total, nil
}

func (r *ResourceRepository) Replace(_ context.Context, doc domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := doc.ID()
	if _, ok := r.docs[id]; !ok {
		return domain.ErrNotFound
	}
	r.docs[id] = cloneDocument(doc)
	return nil
}

func (r *ResourceRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.docs, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func matches(doc domain.Document, filter ports.ListFilter) bool {
	for field, want := range filter.Equals {
		if fmt.Sprint(doc[field]) != want {
			return false
		}
	}
	if filter.Search == "" {
		return true
	}
	needle := strings.ToLower(filter.Search)
	for _, field := range searchFields {
		if s, ok := doc[field].(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}
