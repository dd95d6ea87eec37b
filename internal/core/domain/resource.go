package domain

// Resource names the collections the mock backend serves.
type Resource string

const (
	ResourceVehicles        Resource = "vehicles"
	ResourceMaterials       Resource = "materials"
	ResourcePartners        Resource = "partners"
	ResourceServiceRequests Resource = "service_requests"
)

// Document is a schemaless listing as stored by the mock backend. The
// reserved keys below are maintained by the backend itself.
type Document map[string]any

const (
	FieldID        = "id"
	FieldOwnerID   = "owner_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// ID returns the document id, or "" when unset.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// OwnerID returns the id of the user that created the document.
func (d Document) OwnerID() string {
	id, _ := d[FieldOwnerID].(string)
	return id
}
