package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	OnboardingPending   = "pending"
	OnboardingCompleted = "completed"
	OnboardingApproved  = "approved"
	OnboardingRejected  = "rejected"
)

// OnboardingRecord is a per-organization submission of business data
// awaiting review. Records are never deleted; approved and rejected are
// terminal states.
type OnboardingRecord struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	OrganizationID   uuid.UUID  `json:"organization_id" db:"organization_id"`
	CompanyName      string     `json:"company_name" db:"company_name"`
	ContactName      string     `json:"contact_name" db:"contact_name"`
	ContactEmail     string     `json:"contact_email" db:"contact_email"`
	BankName         *string    `json:"bank_name,omitempty" db:"bank_name"`
	BankAccount      *string    `json:"bank_account,omitempty" db:"bank_account"`
	TaxID            *string    `json:"tax_id,omitempty" db:"tax_id"`
	RequestedVessels int        `json:"requested_vessels" db:"requested_vessels"`
	Status           string     `json:"status" db:"status"`
	RejectionReason  *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ReviewerID       *uuid.UUID `json:"reviewer_id,omitempty" db:"reviewer_id"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	SubmittedAt      time.Time  `json:"submitted_at" db:"submitted_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Reviewable reports whether the record can still be approved or rejected.
func (o *OnboardingRecord) Reviewable() bool {
	return o.Status == OnboardingPending || o.Status == OnboardingCompleted
}
