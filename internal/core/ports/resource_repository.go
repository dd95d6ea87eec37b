package ports

import (
	"context"

	"github.com/autox/marketplace-client/internal/core/domain"
)

// ListFilter carries the query parameters for listing documents.
type ListFilter struct {
	// Equals matches documents whose field, rendered as a string, equals the value.
	Equals map[string]string
	// Search is a case-insensitive partial match on name, title and description.
	Search string
	Page   int // 1-based
	Limit  int // max rows per page (capped at 100 by the service)
}

// ResourceRepository persists schemaless documents of one resource.
type ResourceRepository interface {
	Insert(ctx context.Context, doc domain.Document) error
	FindByID(ctx context.Context, id string) (domain.Document, error)
	FindOne(ctx context.Context, field, value string) (domain.Document, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Document, int64, error)
	Replace(ctx context.Context, doc domain.Document) error
	Delete(ctx context.Context, id string) error
}
