package domain

import (
	"encoding/json"
	"fmt"
)

// Role is the marketplace role carried by an Identity.
type Role string

const (
	RoleConsumer         Role = "consumer"
	RoleVehicleOwner     Role = "vehicle_owner"
	RoleMaterialSupplier Role = "material_supplier"
	RoleAdmin            Role = "admin"
)

// Roles lists every role in display order.
var Roles = []Role{RoleConsumer, RoleVehicleOwner, RoleMaterialSupplier, RoleAdmin}

// Valid reports whether r is one of the fixed marketplace roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Identity is the profile of the authenticated user held by the session.
// Fields the backend returns beyond the well-known ones are kept in Extra
// and survive a JSON round trip unchanged.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  Role   `json:"role"  validate:"required,oneof=consumer vehicle_owner material_supplier admin"`

	Extra map[string]json.RawMessage `json:"-"`
}

// IdentityPatch is a partial identity update. Keys are JSON field names.
type IdentityPatch map[string]any

var identityFields = map[string]struct{}{"id": {}, "name": {}, "email": {}, "role": {}}

func (i Identity) MarshalJSON() ([]byte, error) {
	fields, err := i.fields()
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (i *Identity) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("identity: expected JSON object")
	}

	var out Identity
	targets := map[string]any{"id": &out.ID, "name": &out.Name, "email": &out.Email, "role": &out.Role}
	for key, raw := range fields {
		if target, ok := targets[key]; ok {
			if err := json.Unmarshal(raw, target); err != nil {
				return fmt.Errorf("identity: field %q: %w", key, err)
			}
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[key] = raw
	}
	*i = out
	return nil
}

// Merge returns a copy of i with every key of patch shallow-merged over it.
// Keys that are not well-known identity fields land in Extra.
func (i Identity) Merge(patch IdentityPatch) (Identity, error) {
	fields, err := i.fields()
	if err != nil {
		return Identity{}, err
	}
	for key, value := range patch {
		raw, err := json.Marshal(value)
		if err != nil {
			return Identity{}, fmt.Errorf("identity: encode patch field %q: %w", key, err)
		}
		fields[key] = raw
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return Identity{}, err
	}
	var merged Identity
	if err := json.Unmarshal(data, &merged); err != nil {
		return Identity{}, err
	}
	return merged, nil
}

// Field returns the raw JSON value of a field, well-known or extra.
func (i Identity) Field(name string) (json.RawMessage, bool) {
	if _, ok := identityFields[name]; !ok {
		raw, ok := i.Extra[name]
		return raw, ok
	}
	fields, err := i.fields()
	if err != nil {
		return nil, false
	}
	return fields[name], true
}

func (i Identity) fields() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(i.Extra)+len(identityFields))
	for k, v := range i.Extra {
		out[k] = v
	}
	for key, value := range map[string]any{"id": i.ID, "name": i.Name, "email": i.Email, "role": i.Role} {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		out[key] = raw
	}
	return out, nil
}
