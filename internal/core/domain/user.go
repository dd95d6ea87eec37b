package domain

import (
	"encoding/json"
	"time"
)

// User is an account as stored by the mock backend.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	District     string    `json:"district,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity projects the account onto the session identity the client keeps.
func (u *User) Identity() Identity {
	id := Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	for key, value := range map[string]string{"phone": u.Phone, "district": u.District} {
		if value == "" {
			continue
		}
		raw, _ := json.Marshal(value)
		if id.Extra == nil {
			id.Extra = make(map[string]json.RawMessage)
		}
		id.Extra[key] = raw
	}
	return id
}
