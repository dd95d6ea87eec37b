package gateway

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/autox/marketplace-client/internal/core/domain"
)

// Credentials is the body of /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of /auth/register.
type Registration struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Phone    string      `json:"phone,omitempty"`
	District string      `json:"district,omitempty"`
	Role     domain.Role `json:"role"`
}

// PasswordChange is the body of /auth/change-password.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// StatusUpdate is the body of /service-requests/{id}/status.
type StatusUpdate struct {
	Status domain.RequestStatus `json:"status"`
	Notes  string               `json:"notes,omitempty"`
}

// FeedbackInput is the body of /service-requests/{id}/feedback.
type FeedbackInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Raw is the envelope type returned by untyped group methods.
type Raw = domain.Envelope[json.RawMessage]

func (c *Client) call(ctx context.Context, g group, action, id string, query url.Values, body any) (*Raw, error) {
	ep := lookup(g, action)
	return c.Request(ctx, ep.expand(id, query), ep.options(body))
}

func callTyped[T any](ctx context.Context, c *Client, g group, action, id string, body any) (*domain.Envelope[T], error) {
	env, err := c.call(ctx, g, action, id, nil, body)
	if err != nil {
		return nil, err
	}
	return Decode[T](env)
}

// --- auth ---

type AuthAPI struct{ c *Client }

func (a *AuthAPI) Register(ctx context.Context, in Registration) (*domain.Envelope[domain.AuthPayload], error) {
	return callTyped[domain.AuthPayload](ctx, a.c, groupAuth, "register", "", in)
}

func (a *AuthAPI) Login(ctx context.Context, in Credentials) (*domain.Envelope[domain.AuthPayload], error) {
	return callTyped[domain.AuthPayload](ctx, a.c, groupAuth, "login", "", in)
}

func (a *AuthAPI) Profile(ctx context.Context) (*domain.Envelope[domain.Identity], error) {
	return callTyped[domain.Identity](ctx, a.c, groupAuth, "profile", "", nil)
}

// UpdateProfile sends a partial profile; only the supplied keys change.
func (a *AuthAPI) UpdateProfile(ctx context.Context, patch domain.IdentityPatch) (*domain.Envelope[domain.Identity], error) {
	return callTyped[domain.Identity](ctx, a.c, groupAuth, "updateProfile", "", patch)
}

func (a *AuthAPI) ChangePassword(ctx context.Context, in PasswordChange) (*Raw, error) {
	return a.c.call(ctx, groupAuth, "changePassword", "", nil, in)
}

func (a *AuthAPI) Logout(ctx context.Context) (*Raw, error) {
	return a.c.call(ctx, groupAuth, "logout", "", nil, struct{}{})
}

// --- listings ---

// ListingAPI serves /materials and the shared part of /vehicles.
type ListingAPI struct {
	c     *Client
	group group
}

// List fetches a page of listings. query may be nil.
func (l *ListingAPI) List(ctx context.Context, query url.Values) (*Raw, error) {
	return l.c.call(ctx, l.group, "list", "", query, nil)
}

func (l *ListingAPI) Get(ctx context.Context, id string) (*Raw, error) {
	return l.c.call(ctx, l.group, "get", id, nil, nil)
}

func (l *ListingAPI) Create(ctx context.Context, doc any) (*Raw, error) {
	return l.c.call(ctx, l.group, "create", "", nil, doc)
}

func (l *ListingAPI) Update(ctx context.Context, id string, doc any) (*Raw, error) {
	return l.c.call(ctx, l.group, "update", id, nil, doc)
}

func (l *ListingAPI) Delete(ctx context.Context, id string) (*Raw, error) {
	return l.c.call(ctx, l.group, "delete", id, nil, nil)
}

func (l *ListingAPI) Categories(ctx context.Context) (*domain.Envelope[[]string], error) {
	return callTyped[[]string](ctx, l.c, l.group, "categories", "", nil)
}

type VehicleAPI struct {
	ListingAPI
}

func (v *VehicleAPI) UpdateAvailability(ctx context.Context, id string, availability any) (*Raw, error) {
	return v.c.call(ctx, groupVehicles, "updateAvailability", id, nil, availability)
}

// --- partners ---

type PartnerAPI struct{ c *Client }

func (p *PartnerAPI) Register(ctx context.Context, profile any) (*Raw, error) {
	return p.c.call(ctx, groupPartners, "register", "", nil, profile)
}

func (p *PartnerAPI) Profile(ctx context.Context) (*Raw, error) {
	return p.c.call(ctx, groupPartners, "profile", "", nil, nil)
}

func (p *PartnerAPI) UpdateProfile(ctx context.Context, profile any) (*Raw, error) {
	return p.c.call(ctx, groupPartners, "updateProfile", "", nil, profile)
}

func (p *PartnerAPI) List(ctx context.Context, query url.Values) (*Raw, error) {
	return p.c.call(ctx, groupPartners, "list", "", query, nil)
}

func (p *PartnerAPI) Verify(ctx context.Context, id string, verification any) (*Raw, error) {
	return p.c.call(ctx, groupPartners, "verify", id, nil, verification)
}

// --- service requests ---

type ServiceRequestAPI struct{ c *Client }

func (s *ServiceRequestAPI) Create(ctx context.Context, request any) (*Raw, error) {
	return s.c.call(ctx, groupServiceRequests, "create", "", nil, request)
}

func (s *ServiceRequestAPI) List(ctx context.Context, query url.Values) (*Raw, error) {
	return s.c.call(ctx, groupServiceRequests, "list", "", query, nil)
}

func (s *ServiceRequestAPI) Get(ctx context.Context, id string) (*Raw, error) {
	return s.c.call(ctx, groupServiceRequests, "get", id, nil, nil)
}

func (s *ServiceRequestAPI) UpdateStatus(ctx context.Context, id string, in StatusUpdate) (*Raw, error) {
	return s.c.call(ctx, groupServiceRequests, "updateStatus", id, nil, in)
}

func (s *ServiceRequestAPI) AddFeedback(ctx context.Context, id string, in FeedbackInput) (*Raw, error) {
	return s.c.call(ctx, groupServiceRequests, "addFeedback", id, nil, in)
}
