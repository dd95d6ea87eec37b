package ports

import (
	"context"

	"github.com/autox/marketplace-client/internal/core/domain"
)

// Actor is the authenticated caller of a marketplace operation.
type Actor struct {
	UserID string
	Role   domain.Role
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

// ListResult is a page of documents.
type ListResult struct {
	Items      []domain.Document `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// ListingService serves vehicle and material listings.
type ListingService interface {
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Get(ctx context.Context, id string) (domain.Document, error)
	Create(ctx context.Context, actor Actor, doc domain.Document) (domain.Document, error)
	Update(ctx context.Context, actor Actor, id string, patch domain.Document) (domain.Document, error)
	Delete(ctx context.Context, actor Actor, id string) error
	SetAvailability(ctx context.Context, actor Actor, id string, availability domain.Document) (domain.Document, error)
	Categories() []string
}

// PartnerService serves vehicle owner and supplier business profiles.
type PartnerService interface {
	Register(ctx context.Context, actor Actor, doc domain.Document) (domain.Document, error)
	Mine(ctx context.Context, actor Actor) (domain.Document, error)
	UpdateMine(ctx context.Context, actor Actor, patch domain.Document) (domain.Document, error)
	List(ctx context.Context, actor Actor, filter ListFilter) (*ListResult, error)
	Verify(ctx context.Context, actor Actor, id string, verification domain.Document) (domain.Document, error)
}

// ServiceRequestService handles consumer hire requests.
type ServiceRequestService interface {
	Create(ctx context.Context, actor Actor, doc domain.Document) (domain.Document, error)
	List(ctx context.Context, actor Actor, view string, filter ListFilter) (*ListResult, error)
	Get(ctx context.Context, actor Actor, id string) (domain.Document, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, status domain.RequestStatus, notes string) (domain.Document, error)
	AddFeedback(ctx context.Context, actor Actor, id string, feedback domain.Feedback) (domain.Document, error)
}
