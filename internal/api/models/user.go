package models

import "github.com/tripdesk/tripdesk/internal/auth"

// User represents a dashboard user account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      auth.Role `json:"role"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// UserFromAuth converts a domain user to its API representation.
// The password hash never leaves the auth package.
func UserFromAuth(u *auth.User) *User {
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: Timestamp(u.CreatedAt),
		UpdatedAt: Timestamp(u.UpdatedAt),
	}
}
