package domain

import "time"

const (
	RoleHomeowner       = "homeowner"
	RoleServiceProvider = "service_provider"
)

// User models an authenticated actor in the system.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidRole reports whether role is one of the two marketplace roles.
func ValidRole(role string) bool {
	return role == RoleHomeowner || role == RoleServiceProvider
}
