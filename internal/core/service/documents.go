package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// reservedFields are maintained by the backend and ignored in client input.
var reservedFields = map[string]bool{
	domain.FieldID:        true,
	domain.FieldOwnerID:   true,
	domain.FieldCreatedAt: true,
	domain.FieldUpdatedAt: true,
}

// normalizeFilter applies paging defaults and caps the page size.
func normalizeFilter(f ports.ListFilter) ports.ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}
	if f.Equals == nil {
		f.Equals = map[string]string{}
	}
	return f
}

func newListResult(items []domain.Document, total int64, f ports.ListFilter) *ports.ListResult {
	pages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return &ports.ListResult{Items: items, Total: total, Page: f.Page, Limit: f.Limit, TotalPages: pages}
}

// mergeInput copies non-reserved fields of in onto doc. skip names extra
// fields the caller may not set.
func mergeInput(doc, in domain.Document, skip ...string) {
	for k, v := range in {
		if reservedFields[k] || contains(skip, k) {
			continue
		}
		doc[k] = v
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func stamp(now time.Time) string { return now.UTC().Format(time.RFC3339) }

func requireString(doc domain.Document, field string) (string, error) {
	v, _ := doc[field].(string)
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	return v, nil
}

// canModify reports whether actor may change a document owned by ownerID.
func canModify(actor ports.Actor, ownerID string) bool {
	return actor.IsAdmin() || (actor.UserID != "" && actor.UserID == ownerID)
}
