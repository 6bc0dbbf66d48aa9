package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	LicenseActive    = "active"
	LicenseExpired   = "expired"
	LicenseSuspended = "suspended"
	LicenseRevoked   = "revoked"
)

// Resource keys used in license usage limits and counters.
const (
	ResourceUsers         = "users"
	ResourceVessels       = "vessels"
	ResourceItems         = "items"
	ResourceEmployees     = "employees"
	ResourceBusinessUnits = "businessUnits"
)

// UsageCounts maps a resource key to an integer cap or counter.
// A key absent from a limits map means the resource is uncapped.
type UsageCounts map[string]int

// License is the entitlement record bounding how much of each resource
// type an organization may create. An organization holds at most one
// non-revoked license at any time.
type License struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	OrganizationID uuid.UUID   `json:"organization_id" db:"organization_id"`
	Status         string      `json:"status" db:"status"`
	UsageLimits    UsageCounts `json:"usage_limits" db:"usage_limits"`
	CurrentUsage   UsageCounts `json:"current_usage" db:"current_usage"`
	IssuedAt       time.Time   `json:"issued_at" db:"issued_at"`
	ExpiresAt      *time.Time  `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// Blocking reports whether the license blocks issuance of another
// license for the same organization. Revoked and expired licenses do not.
func (l *License) Blocking() bool {
	return l.Status == LicenseActive || l.Status == LicenseSuspended
}

// HasCapacity reports whether one more unit of resource fits under the
// configured limit. Resources without a limit always have capacity.
func (l *License) HasCapacity(resource string) bool {
	limit, capped := l.UsageLimits[resource]
	if !capped {
		return true
	}
	return l.CurrentUsage[resource] < limit
}
