package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InvitationPending  = "pending"
	InvitationRedeemed = "redeemed"
	InvitationExpired  = "expired"
)

// Invitation lets an organization contact submit the onboarding form.
// The token is a signed JWT; redeeming it creates the OnboardingRecord.
type Invitation struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	Email          string     `json:"email" db:"email"`
	Token          string     `json:"-" db:"token"`
	Status         string     `json:"status" db:"status"`
	ExpiresAt      time.Time  `json:"expires_at" db:"expires_at"`
	RedeemedAt     *time.Time `json:"redeemed_at,omitempty" db:"redeemed_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}
