package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrgTypeCustomer = "customer"
	OrgTypeVendor   = "vendor"
)

// Organization is a customer or vendor company on the platform.
// Type is fixed at creation; organizations that own users or licenses
// are deactivated instead of deleted.
type Organization struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Type       string    `json:"type" db:"org_type"`
	PortalType string    `json:"portal_type" db:"portal_type"`
	Active     bool      `json:"active" db:"active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ValidOrgType reports whether t is one of the supported organization types.
func ValidOrgType(t string) bool {
	return t == OrgTypeCustomer || t == OrgTypeVendor
}
