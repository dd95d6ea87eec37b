package gateway

import (
	"cmp"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

type group string

const (
	groupAuth            group = "auth"
	groupMaterials       group = "materials"
	groupVehicles        group = "vehicles"
	groupPartners        group = "partners"
	groupServiceRequests group = "serviceRequests"
	groupUploads         group = "uploads"
)

// Endpoint is one entry of the marketplace REST contract. Path may contain a
// single "{id}" placeholder.
type Endpoint struct {
	Group  string
	Action string
	Method string
	Path   string
	Auth   bool
}

type endpointKey struct {
	group  group
	action string
}

var endpoints = map[endpointKey]Endpoint{}

func register(g group, action, method, path string, auth bool) {
	endpoints[endpointKey{g, action}] = Endpoint{
		Group: string(g), Action: action, Method: method, Path: path, Auth: auth,
	}
}

func init() {
	register(groupAuth, "register", http.MethodPost, "/auth/register", false)
	register(groupAuth, "login", http.MethodPost, "/auth/login", false)
	register(groupAuth, "profile", http.MethodGet, "/auth/me", true)
	register(groupAuth, "updateProfile", http.MethodPut, "/auth/profile", true)
	register(groupAuth, "changePassword", http.MethodPost, "/auth/change-password", true)
	register(groupAuth, "logout", http.MethodPost, "/auth/logout", true)

	for _, g := range []group{groupMaterials, groupVehicles} {
		base := "/" + string(g)
		register(g, "list", http.MethodGet, base, false)
		register(g, "get", http.MethodGet, base+"/{id}", false)
		register(g, "create", http.MethodPost, base, true)
		register(g, "update", http.MethodPut, base+"/{id}", true)
		register(g, "delete", http.MethodDelete, base+"/{id}", true)
		register(g, "categories", http.MethodGet, base+"/categories/list", false)
	}
	register(groupVehicles, "updateAvailability", http.MethodPost, "/vehicles/{id}/availability", true)

	register(groupPartners, "register", http.MethodPost, "/partners/register", true)
	register(groupPartners, "profile", http.MethodGet, "/partners/me", true)
	register(groupPartners, "updateProfile", http.MethodPut, "/partners/me", true)
	register(groupPartners, "list", http.MethodGet, "/partners", true)
	register(groupPartners, "verify", http.MethodPut, "/partners/{id}/verify", true)

	register(groupServiceRequests, "create", http.MethodPost, "/service-requests", true)
	register(groupServiceRequests, "list", http.MethodGet, "/service-requests", true)
	register(groupServiceRequests, "get", http.MethodGet, "/service-requests/{id}", true)
	register(groupServiceRequests, "updateStatus", http.MethodPut, "/service-requests/{id}/status", true)
	register(groupServiceRequests, "addFeedback", http.MethodPost, "/service-requests/{id}/feedback", true)

	register(groupUploads, "profileImage", http.MethodPost, "/upload/profile-image", true)
	register(groupUploads, "documents", http.MethodPost, "/upload/documents", true)
}

// Endpoints returns a copy of the endpoint table ordered by group and action.
func Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(endpoints))
	for _, ep := range endpoints {
		out = append(out, ep)
	}
	slices.SortFunc(out, func(a, b Endpoint) int {
		return cmp.Or(cmp.Compare(a.Group, b.Group), cmp.Compare(a.Action, b.Action))
	})
	return out
}

func lookup(g group, action string) Endpoint {
	ep, ok := endpoints[endpointKey{g, action}]
	if !ok {
		panic("gateway: unknown endpoint " + string(g) + "." + action)
	}
	return ep
}

// expand fills the {id} placeholder and appends the encoded query.
func (ep Endpoint) expand(id string, query url.Values) string {
	p := ep.Path
	if strings.Contains(p, "{id}") {
		p = strings.Replace(p, "{id}", url.PathEscape(id), 1)
	}
	if len(query) > 0 {
		p += "?" + query.Encode()
	}
	return p
}

func (ep Endpoint) options(body any) RequestOptions {
	return RequestOptions{
		Method:       ep.Method,
		Body:         body,
		RequiresAuth: ep.Auth,
		route:        ep.Path,
	}
}
