package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
	"github.com/autox/marketplace-client/internal/infrastructure/db/memory"
)

var (
	owner    = ports.Actor{UserID: "owner-1", Role: domain.RoleVehicleOwner}
	intruder = ports.Actor{UserID: "owner-2", Role: domain.RoleVehicleOwner}
	consumer = ports.Actor{UserID: "consumer-1", Role: domain.RoleConsumer}
	admin    = ports.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
)

func newVehicleService() *ListingService {
	return NewListingService(memory.NewResourceRepository(), domain.ResourceVehicles, domain.VehicleCategories, zerolog.Nop())
}

func createVehicle(t *testing.T, svc *ListingService, actor ports.Actor, name string) domain.Document {
	t.Helper()
	doc, err := svc.Create(context.Background(), actor, domain.Document{
		"name": name, "category": "Excavator", "district": "Kandy", "daily_rate": 45000,
	})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return doc
}

func TestListingService_CreateStampsOwnership(t *testing.T) {
	svc := newVehicleService()

	doc, err := svc.Create(context.Background(), owner, domain.Document{
		"name": "CAT 320", "category": "Excavator", "owner_id": "someone-else", "id": "forged",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.OwnerID() != owner.UserID {
		t.Fatalf("expected owner %s, got %s", owner.UserID, doc.OwnerID())
	}
	if doc.ID() == "" || doc.ID() == "forged" {
		t.Fatalf("expected server-generated id, got %q", doc.ID())
	}
	if doc[domain.FieldCreatedAt] == nil || doc[fieldAvailable] != true {
		t.Fatalf("expected defaults, got %v", doc)
	}
}

func TestListingService_CreateValidation(t *testing.T) {
	svc := newVehicleService()
	ctx := context.Background()

	cases := []domain.Document{
		{"category": "Excavator"},
		{"name": "x", "category": "Spaceship"},
		{"name": "x", "category": "Crane", "district": "Atlantis"},
	}
	for _, in := range cases {
		if _, err := svc.Create(ctx, owner, in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation for %v, got %v", in, err)
		}
	}
}

func TestListingService_OnlyOwnerOrAdminModifies(t *testing.T) {
	svc := newVehicleService()
	ctx := context.Background()
	doc := createVehicle(t, svc, owner, "JCB 3DX")

	if _, err := svc.Update(ctx, intruder, doc.ID(), domain.Document{"name": "mine now"}); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, intruder, doc.ID()); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	updated, err := svc.Update(ctx, owner, doc.ID(), domain.Document{"daily_rate": 50000, "owner_id": "x"})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated["daily_rate"] != 50000 || updated.OwnerID() != owner.UserID {
		t.Fatalf("unexpected document %v", updated)
	}

	if err := svc.Delete(ctx, admin, doc.ID()); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := svc.Get(ctx, doc.ID()); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListingService_ListPaging(t *testing.T) {
	svc := newVehicleService()
	for _, n := range []string{"a", "b", "c"} {
		createVehicle(t, svc, owner, n)
	}

	res, err := svc.List(context.Background(), ports.ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 3 || res.TotalPages != 2 || res.Page != 1 || len(res.Items) != 2 {
		t.Fatalf("unexpected page %+v", res)
	}

	res, _ = svc.List(context.Background(), ports.ListFilter{Limit: 1000})
	if res.Limit != maxPageLimit {
		t.Fatalf("expected limit capped at %d, got %d", maxPageLimit, res.Limit)
	}
}

func TestListingService_SetAvailability(t *testing.T) {
	svc := newVehicleService()
	doc := createVehicle(t, svc, owner, "Crane 50t")

	updated, err := svc.SetAvailability(context.Background(), owner, doc.ID(), domain.Document{
		"is_available": false, "from": "2026-11-01", "to": "2026-11-05",
	})
	if err != nil {
		t.Fatalf("set availability: %v", err)
	}
	if updated[fieldAvailable] != false {
		t.Fatalf("expected listing marked unavailable")
	}
	window, _ := updated[fieldAvailability].(map[string]any)
	if window["from"] != "2026-11-01" {
		t.Fatalf("unexpected availability window %v", updated[fieldAvailability])
	}
}

func TestPartnerService_Lifecycle(t *testing.T) {
	svc := NewPartnerService(memory.NewResourceRepository(), zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Register(ctx, consumer, domain.Document{"business_name": "X"}); err != domain.ErrForbidden {
		t.Fatalf("expected consumers to be refused, got %v", err)
	}

	p, err := svc.Register(ctx, owner, domain.Document{"business_name": "Perera Hire", "verified": true})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if p[fieldVerified] != false || p[fieldPartnerType] != string(domain.RoleVehicleOwner) {
		t.Fatalf("unexpected partner %v", p)
	}
	if _, err := svc.Register(ctx, owner, domain.Document{"business_name": "Again"}); err != domain.ErrAlreadyPartner {
		t.Fatalf("expected ErrAlreadyPartner, got %v", err)
	}

	public, _ := svc.List(ctx, consumer, ports.ListFilter{})
	if public.Total != 0 {
		t.Fatalf("unverified partners must be hidden, got %d", public.Total)
	}

	if _, err := svc.Verify(ctx, owner, p.ID(), domain.Document{}); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for non-admin verify, got %v", err)
	}
	verified, err := svc.Verify(ctx, admin, p.ID(), domain.Document{"notes": "documents checked"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified[fieldVerified] != true || verified[fieldVerifiedAt] == nil {
		t.Fatalf("unexpected verification %v", verified)
	}

	public, _ = svc.List(ctx, consumer, ports.ListFilter{})
	if public.Total != 1 {
		t.Fatalf("expected verified partner to be listed, got %d", public.Total)
	}

	mine, err := svc.UpdateMine(ctx, owner, domain.Document{"phone": "0771234567", "verified": false})
	if err != nil {
		t.Fatalf("update mine: %v", err)
	}
	if mine[fieldVerified] != true || mine["phone"] != "0771234567" {
		t.Fatalf("unexpected profile %v", mine)
	}
}

func newRequestFixture(t *testing.T) (*ServiceRequestService, domain.Document, *[]domain.RequestStatus) {
	t.Helper()
	vehicles := memory.NewResourceRepository()
	listings := NewListingService(vehicles, domain.ResourceVehicles, domain.VehicleCategories, zerolog.Nop())
	vehicle := createVehicle(t, listings, owner, "Tipper 10 cube")

	var transitions []domain.RequestStatus
	svc := NewServiceRequestService(
		memory.NewResourceRepository(),
		map[domain.Resource]ports.ResourceRepository{domain.ResourceVehicles: vehicles},
		zerolog.Nop(),
		func(c domain.StatusChange) { transitions = append(transitions, c.To) },
	)
	return svc, vehicle, &transitions
}

func TestServiceRequestService_FullLifecycle(t *testing.T) {
	svc, vehicle, transitions := newRequestFixture(t)
	ctx := context.Background()

	req, err := svc.Create(ctx, consumer, domain.Document{
		"listing_id": vehicle.ID(), "listing_type": "vehicle", "notes": "need it Monday", "status": "completed",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if statusOf(req) != domain.RequestPending || req[fieldProviderID] != owner.UserID {
		t.Fatalf("unexpected request %v", req)
	}

	if _, err := svc.AddFeedback(ctx, consumer, req.ID(), domain.Feedback{Rating: 5}); err != domain.ErrFeedbackNotAllowed {
		t.Fatalf("expected ErrFeedbackNotAllowed, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, consumer, req.ID(), domain.RequestAccepted, ""); err != domain.ErrForbidden {
		t.Fatalf("consumer must not accept, got %v", err)
	}

	for _, next := range []domain.RequestStatus{domain.RequestAccepted, domain.RequestInProgress, domain.RequestCompleted} {
		if _, err := svc.UpdateStatus(ctx, owner, req.ID(), next, "ok"); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
	if len(*transitions) != 3 {
		t.Fatalf("expected 3 recorded transitions, got %v", *transitions)
	}

	done, err := svc.AddFeedback(ctx, consumer, req.ID(), domain.Feedback{Rating: 4, Comment: "on time"})
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if len(historyOf(done)) != 4 {
		t.Fatalf("expected 4 history entries, got %v", done[fieldStatusHistory])
	}
	if _, err := svc.AddFeedback(ctx, consumer, req.ID(), domain.Feedback{Rating: 1}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected duplicate feedback to be refused, got %v", err)
	}
}

func TestServiceRequestService_InvalidTransition(t *testing.T) {
	svc, vehicle, _ := newRequestFixture(t)
	ctx := context.Background()
	req, _ := svc.Create(ctx, consumer, domain.Document{"listing_id": vehicle.ID(), "listing_type": "vehicle"})

	if _, err := svc.UpdateStatus(ctx, owner, req.ID(), domain.RequestCompleted, ""); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, consumer, req.ID(), domain.RequestCancelled, "changed plans"); err != nil {
		t.Fatalf("consumer cancel: %v", err)
	}
}

func TestServiceRequestService_Visibility(t *testing.T) {
	svc, vehicle, _ := newRequestFixture(t)
	ctx := context.Background()
	req, _ := svc.Create(ctx, consumer, domain.Document{"listing_id": vehicle.ID(), "listing_type": "vehicle"})

	if _, err := svc.Get(ctx, intruder, req.ID()); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	mine, _ := svc.List(ctx, consumer, "", ports.ListFilter{})
	incoming, _ := svc.List(ctx, owner, ViewProvider, ports.ListFilter{})
	others, _ := svc.List(ctx, intruder, ViewProvider, ports.ListFilter{})
	all, _ := svc.List(ctx, admin, "", ports.ListFilter{})
	if mine.Total != 1 || incoming.Total != 1 || others.Total != 0 || all.Total != 1 {
		t.Fatalf("unexpected totals: mine=%d incoming=%d others=%d all=%d",
			mine.Total, incoming.Total, others.Total, all.Total)
	}
}

func TestServiceRequestService_CreateValidation(t *testing.T) {
	svc, vehicle, _ := newRequestFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, owner, domain.Document{"listing_id": vehicle.ID(), "listing_type": "vehicle"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected owners to be refused on their own listing, got %v", err)
	}
	if _, err := svc.Create(ctx, consumer, domain.Document{"listing_id": "x", "listing_type": "boat"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.Create(ctx, consumer, domain.Document{"listing_id": "missing", "listing_type": "vehicle"}); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
