package models

import "github.com/google/uuid"

type Role string

const (
	AdminRole Role = "admin"
	UserRole  Role = "user"
)

// User is the identity supplied by the external auth service via JWT claims.
// The orchestrator never stores credentials; it only needs the id and role to
// scope job reads and gate admin overrides.
type User struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username,omitempty"`
	Role     Role      `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u.Role == AdminRole
}
