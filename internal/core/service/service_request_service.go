package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
)

const (
	fieldListingID     = "listing_id"
	fieldListingType   = "listing_type"
	fieldConsumerID    = "consumer_id"
	fieldProviderID    = "provider_id"
	fieldStatus        = "status"
	fieldStatusHistory = "status_history"
	fieldFeedback      = "feedback"

	// ViewProvider selects the requests addressed to the caller's listings.
	ViewProvider = "provider"
)

// listingTypes maps the listing_type of a request to the listing resource.
var listingTypes = map[string]domain.Resource{
	"vehicle":  domain.ResourceVehicles,
	"material": domain.ResourceMaterials,
}

// ServiceRequestService handles hire requests from consumers to the owners
// of vehicle and material listings.
type ServiceRequestService struct {
	repo     ports.ResourceRepository
	listings map[domain.Resource]ports.ResourceRepository
	logger   zerolog.Logger
	now      func() time.Time
	// onTransition is called after every persisted status change.
	onTransition func(domain.StatusChange)
}

func NewServiceRequestService(
	repo ports.ResourceRepository,
	listings map[domain.Resource]ports.ResourceRepository,
	logger zerolog.Logger,
	onTransition func(domain.StatusChange),
) *ServiceRequestService {
	if onTransition == nil {
		onTransition = func(domain.StatusChange) {}
	}
	return &ServiceRequestService{
		repo:         repo,
		listings:     listings,
		logger:       logger,
		now:          time.Now,
		onTransition: onTransition,
	}
}

// Create opens a pending request against an existing listing. The provider
// is the listing owner.
func (s *ServiceRequestService) Create(ctx context.Context, actor ports.Actor, in domain.Document) (domain.Document, error) {
	listingID, err := requireString(in, fieldListingID)
	if err != nil {
		return nil, err
	}
	listingType, err := requireString(in, fieldListingType)
	if err != nil {
		return nil, err
	}
	resource, ok := listingTypes[listingType]
	if !ok {
		return nil, fmt.Errorf("%w: listing_type must be vehicle or material", domain.ErrValidation)
	}
	repo, ok := s.listings[resource]
	if !ok {
		return nil, fmt.Errorf("%w: %s listings are not served", domain.ErrValidation, resource)
	}
	listing, err := repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID() == actor.UserID {
		return nil, fmt.Errorf("%w: cannot request your own listing", domain.ErrValidation)
	}

	now := s.now()
	doc := domain.Document{}
	mergeInput(doc, in, fieldConsumerID, fieldProviderID, fieldStatus, fieldStatusHistory, fieldFeedback)
	doc[domain.FieldID] = uuid.NewString()
	doc[domain.FieldOwnerID] = actor.UserID
	doc[fieldConsumerID] = actor.UserID
	doc[fieldProviderID] = listing.OwnerID()
	doc[fieldStatus] = string(domain.RequestPending)
	doc[fieldStatusHistory] = []any{historyEntry(domain.RequestPending, "", actor.UserID, now)}
	doc[domain.FieldCreatedAt] = stamp(now)
	doc[domain.FieldUpdatedAt] = stamp(now)

	if err := s.repo.Insert(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Info().Str("request_id", doc.ID()).Str("listing_id", listingID).Msg("service request created")
	return doc, nil
}

// List returns the caller's requests: as consumer by default, as provider
// when view is ViewProvider. Admins see every request.
func (s *ServiceRequestService) List(ctx context.Context, actor ports.Actor, view string, filter ports.ListFilter) (*ports.ListResult, error) {
	f := normalizeFilter(filter)
	if !actor.IsAdmin() {
		if view == ViewProvider {
			f.Equals[fieldProviderID] = actor.UserID
		} else {
			f.Equals[fieldConsumerID] = actor.UserID
		}
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list service requests: %w", err)
	}
	return newListResult(items, total, f), nil
}

func (s *ServiceRequestService) Get(ctx context.Context, actor ports.Actor, id string) (domain.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isParty(actor, doc) {
		return nil, domain.ErrForbidden
	}
	return doc, nil
}

// UpdateStatus applies a state machine transition. The provider accepts,
// rejects, starts and completes; either party may cancel.
func (s *ServiceRequestService) UpdateStatus(ctx context.Context, actor ports.Actor, id string, next domain.RequestStatus, notes string) (domain.Document, error) {
	doc, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	current := statusOf(doc)
	if !current.CanTransitionTo(next) {
		return nil, fmt.Errorf("update status: %w (from %s to %s)", domain.ErrInvalidTransition, current, next)
	}
	isProvider := doc[fieldProviderID] == actor.UserID
	if next != domain.RequestCancelled && !isProvider && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	now := s.now()
	doc[fieldStatus] = string(next)
	doc[fieldStatusHistory] = append(historyOf(doc), historyEntry(next, notes, actor.UserID, now))
	doc[domain.FieldUpdatedAt] = stamp(now)

	if err := s.repo.Replace(ctx, doc); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	s.onTransition(domain.StatusChange{RequestID: id, From: current, To: next, ActorID: actor.UserID, At: now})
	s.logger.Info().Str("request_id", id).Str("from", string(current)).Str("to", string(next)).Msg("service request status changed")
	return doc, nil
}

// AddFeedback stores the consumer's rating of a completed request.
func (s *ServiceRequestService) AddFeedback(ctx context.Context, actor ports.Actor, id string, fb domain.Feedback) (domain.Document, error) {
	if fb.Rating < 1 || fb.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	doc, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if doc[fieldConsumerID] != actor.UserID {
		return nil, domain.ErrForbidden
	}
	if statusOf(doc) != domain.RequestCompleted {
		return nil, domain.ErrFeedbackNotAllowed
	}
	if _, exists := doc[fieldFeedback]; exists {
		return nil, fmt.Errorf("%w: feedback already submitted", domain.ErrValidation)
	}

	now := s.now()
	doc[fieldFeedback] = map[string]any{
		"rating":     fb.Rating,
		"comment":    fb.Comment,
		"created_at": stamp(now),
	}
	doc[domain.FieldUpdatedAt] = stamp(now)
	if err := s.repo.Replace(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isParty(actor ports.Actor, doc domain.Document) bool {
	return actor.IsAdmin() || doc[fieldConsumerID] == actor.UserID || doc[fieldProviderID] == actor.UserID
}

func statusOf(doc domain.Document) domain.RequestStatus {
	s, _ := doc[fieldStatus].(string)
	return domain.RequestStatus(s)
}

func historyOf(doc domain.Document) []any {
	h, _ := doc[fieldStatusHistory].([]any)
	out := make([]any, len(h), len(h)+1)
	copy(out, h)
	return out
}

func historyEntry(status domain.RequestStatus, notes, by string, at time.Time) map[string]any {
	e := map[string]any{
		"status":     string(status),
		"timestamp":  stamp(at),
		"changed_by": by,
	}
	if notes != "" {
		e["notes"] = notes
	}
	return e
}
