package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/autox/marketplace-client/internal/api/middleware"
	"github.com/autox/marketplace-client/internal/core/ports"
)

// ctxActor extracts the caller injected by the Auth middleware. Absent
// claims mean the route was registered without Auth.
func ctxActor(c echo.Context) (ports.Actor, *ports.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.UserID == "" {
		return ports.Actor{}, nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Actor{UserID: claims.UserID, Role: claims.Role}, claims, nil
}

// reservedQuery are list query parameters that are not field filters.
var reservedQuery = map[string]bool{"page": true, "limit": true, "search": true, "view": true}

// listFilter builds a ListFilter from the query string. Unknown parameters
// become equality filters.
func listFilter(c echo.Context) ports.ListFilter {
	q := c.QueryParams()
	f := ports.ListFilter{Equals: map[string]string{}, Search: q.Get("search")}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	for key, values := range q {
		if reservedQuery[key] || len(values) == 0 || values[0] == "" {
			continue
		}
		f.Equals[key] = values[0]
	}
	return f
}
