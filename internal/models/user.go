package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an actor on one of the portals. OrganizationID is nil for
// platform-level admins. RoleID points at the user's current role
// assignment; a dangling reference degrades to no permissions.
type User struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty" db:"organization_id"`
	Email          string     `json:"email" db:"email"`
	PasswordHash   string     `json:"-" db:"password_hash"`
	FullName       string     `json:"full_name" db:"full_name"`
	RoleID         *uuid.UUID `json:"role_id,omitempty" db:"role_id"`
	RoleLabel      string     `json:"role_label" db:"role_label"`
	PortalType     string     `json:"portal_type" db:"portal_type"`
	Status         string     `json:"status" db:"status"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}
