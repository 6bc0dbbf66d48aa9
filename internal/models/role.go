package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is an editable named permission set scoped to a portal. The Name
// label is also what the heuristic role resolver classifies; Permissions
// holds the explicit grant keys assigned by a super-admin.
type Role struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PortalType  string    `json:"portal_type" db:"portal_type"`
	Name        string    `json:"name" db:"name"`
	Permissions []string  `json:"permissions" db:"permissions"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
