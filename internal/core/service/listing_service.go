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
	fieldName         = "name"
	fieldCategory     = "category"
	fieldDistrict     = "district"
	fieldAvailability = "availability"
	fieldAvailable    = "is_available"
)

// ListingService serves one listing resource (vehicles or materials).
type ListingService struct {
	repo       ports.ResourceRepository
	resource   domain.Resource
	categories []string
	logger     zerolog.Logger
	now        func() time.Time
}

func NewListingService(repo ports.ResourceRepository, resource domain.Resource, categories []string, logger zerolog.Logger) *ListingService {
	return &ListingService{
		repo:       repo,
		resource:   resource,
		categories: categories,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *ListingService) List(ctx context.Context, filter ports.ListFilter) (*ports.ListResult, error) {
	f := normalizeFilter(filter)
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.resource, err)
	}
	return newListResult(items, total, f), nil
}

func (s *ListingService) Get(ctx context.Context, id string) (domain.Document, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates and stores a new listing owned by actor.
func (s *ListingService) Create(ctx context.Context, actor ports.Actor, in domain.Document) (domain.Document, error) {
	if _, err := requireString(in, fieldName); err != nil {
		return nil, err
	}
	category, err := requireString(in, fieldCategory)
	if err != nil {
		return nil, err
	}
	if !domain.Contains(s.categories, category) {
		return nil, fmt.Errorf("%w: unknown %s category %q", domain.ErrValidation, s.resource, category)
	}
	if district, ok := in[fieldDistrict].(string); ok && district != "" && !domain.Contains(domain.SriLankanDistricts, district) {
		return nil, fmt.Errorf("%w: unknown district %q", domain.ErrValidation, district)
	}

	now := stamp(s.now())
	doc := domain.Document{fieldAvailable: true}
	mergeInput(doc, in)
	doc[domain.FieldID] = uuid.NewString()
	doc[domain.FieldOwnerID] = actor.UserID
	doc[domain.FieldCreatedAt] = now
	doc[domain.FieldUpdatedAt] = now

	if err := s.repo.Insert(ctx, doc); err != nil {
		s.logger.Error().Err(err).Str("resource", string(s.resource)).Msg("failed to create listing")
		return nil, err
	}
	s.logger.Info().Str("resource", string(s.resource)).Str("id", doc.ID()).Str("owner_id", actor.UserID).Msg("listing created")
	return doc, nil
}

func (s *ListingService) Update(ctx context.Context, actor ports.Actor, id string, patch domain.Document) (domain.Document, error) {
	doc, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if c, ok := patch[fieldCategory].(string); ok && !domain.Contains(s.categories, c) {
		return nil, fmt.Errorf("%w: unknown %s category %q", domain.ErrValidation, s.resource, c)
	}
	mergeInput(doc, patch)
	doc[domain.FieldUpdatedAt] = stamp(s.now())

	if err := s.repo.Replace(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *ListingService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("resource", string(s.resource)).Str("id", id).Msg("listing deleted")
	return nil
}

// SetAvailability records an availability window on the listing. An
// is_available boolean in the input also toggles the listing flag.
func (s *ListingService) SetAvailability(ctx context.Context, actor ports.Actor, id string, availability domain.Document) (domain.Document, error) {
	doc, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if v, ok := availability[fieldAvailable].(bool); ok {
		doc[fieldAvailable] = v
	}
	window := map[string]any{}
	for k, v := range availability {
		if k != fieldAvailable {
			window[k] = v
		}
	}
	if len(window) > 0 {
		doc[fieldAvailability] = window
	}
	doc[domain.FieldUpdatedAt] = stamp(s.now())

	if err := s.repo.Replace(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *ListingService) Categories() []string {
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *ListingService) owned(ctx context.Context, actor ports.Actor, id string) (domain.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, doc.OwnerID()) {
		return nil, domain.ErrForbidden
	}
	return doc, nil
}
