package domain

import "encoding/json"

// Envelope is the uniform wrapper returned by every marketplace endpoint.
type Envelope[T any] struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    T                 `json:"data,omitempty"`
	Errors  []json.RawMessage `json:"errors,omitempty"`
}

// ErrorDetail is the shape the backend uses for validation failures.
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// AuthPayload is the data of a successful register or login response.
type AuthPayload struct {
	Token string   `json:"token,omitempty"`
	User  Identity `json:"user"`
}
