package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RFQOpen      = "open"
	RFQQuoted    = "quoted"
	RFQAwarded   = "awarded"
	RFQClosed    = "closed"
	RFQCancelled = "cancelled"
)

// RFQ is a request-for-quote document raised by a customer organization
// and answered by vendor organizations.
type RFQ struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	Reference      string     `json:"reference" db:"reference"`
	Title          string     `json:"title" db:"title"`
	Description    *string    `json:"description,omitempty" db:"description"`
	VesselID       *uuid.UUID `json:"vessel_id,omitempty" db:"vessel_id"`
	Status         string     `json:"status" db:"status"`
	DueDate        *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedBy      uuid.UUID  `json:"created_by" db:"created_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// RFQSearchFilter holds filter criteria for RFQ listings.
type RFQSearchFilter struct {
	Status    *string    `json:"status,omitempty"`
	VesselID  *uuid.UUID `json:"vessel_id,omitempty"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}
