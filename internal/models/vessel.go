package models

import (
	"time"

	"github.com/google/uuid"
)

// Vessel is a customer-organization resource. Creating one consumes a
// unit of the organization's licensed vessel quota.
type Vessel struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	IMONumber      *string   `json:"imo_number,omitempty" db:"imo_number"`
	Flag           *string   `json:"flag,omitempty" db:"flag"`
	Status         string    `json:"status" db:"status"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
