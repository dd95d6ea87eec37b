package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
)

const (
	fieldBusinessName      = "business_name"
	fieldVerified          = "verified"
	fieldVerifiedAt        = "verified_at"
	fieldVerificationNotes = "verification_notes"
	fieldPartnerType       = "partner_type"
)

// PartnerService manages the business profiles of vehicle owners and
// material suppliers. Each account has at most one profile.
type PartnerService struct {
	repo   ports.ResourceRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewPartnerService(repo ports.ResourceRepository, logger zerolog.Logger) *PartnerService {
	return &PartnerService{repo: repo, logger: logger, now: time.Now}
}

func (s *PartnerService) Register(ctx context.Context, actor ports.Actor, in domain.Document) (domain.Document, error) {
	if actor.Role == domain.RoleConsumer {
		return nil, domain.ErrForbidden
	}
	if _, err := requireString(in, fieldBusinessName); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindOne(ctx, domain.FieldOwnerID, actor.UserID); err == nil {
		return nil, domain.ErrAlreadyPartner
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := stamp(s.now())
	doc := domain.Document{}
	mergeInput(doc, in, fieldVerified, fieldVerifiedAt, fieldVerificationNotes)
	doc[domain.FieldID] = uuid.NewString()
	doc[domain.FieldOwnerID] = actor.UserID
	doc[fieldPartnerType] = string(actor.Role)
	doc[fieldVerified] = false
	doc[domain.FieldCreatedAt] = now
	doc[domain.FieldUpdatedAt] = now

	if err := s.repo.Insert(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Info().Str("partner_id", doc.ID()).Str("owner_id", actor.UserID).Msg("partner registered")
	return doc, nil
}

func (s *PartnerService) Mine(ctx context.Context, actor ports.Actor) (domain.Document, error) {
	return s.repo.FindOne(ctx, domain.FieldOwnerID, actor.UserID)
}

// UpdateMine changes the caller's profile. Verification fields are kept.
func (s *PartnerService) UpdateMine(ctx context.Context, actor ports.Actor, patch domain.Document) (domain.Document, error) {
	doc, err := s.repo.FindOne(ctx, domain.FieldOwnerID, actor.UserID)
	if err != nil {
		return nil, err
	}
	mergeInput(doc, patch, fieldVerified, fieldVerifiedAt, fieldVerificationNotes, fieldPartnerType)
	doc[domain.FieldUpdatedAt] = stamp(s.now())
	if err := s.repo.Replace(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns partner profiles. Only admins see unverified profiles.
func (s *PartnerService) List(ctx context.Context, actor ports.Actor, filter ports.ListFilter) (*ports.ListResult, error) {
	f := normalizeFilter(filter)
	if !actor.IsAdmin() {
		f.Equals[fieldVerified] = strconv.FormatBool(true)
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	return newListResult(items, total, f), nil
}

// Verify sets the verification state of a profile. The input may carry a
// "verified" boolean (default true) and "notes".
func (s *PartnerService) Verify(ctx context.Context, actor ports.Actor, id string, in domain.Document) (domain.Document, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	verified := true
	if v, ok := in[fieldVerified].(bool); ok {
		verified = v
	}
	doc[fieldVerified] = verified
	if notes, ok := in["notes"].(string); ok {
		doc[fieldVerificationNotes] = notes
	}
	now := stamp(s.now())
	if verified {
		doc[fieldVerifiedAt] = now
	} else {
		delete(doc, fieldVerifiedAt)
	}
	doc[domain.FieldUpdatedAt] = now

	if err := s.repo.Replace(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Info().Str("partner_id", id).Bool("verified", verified).Msg("partner verification updated")
	return doc, nil
}
