package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB is a generic JSON object column.
type JSONB map[string]interface{}

// Action constants for audit logs
const (
	ActionInsert     = "INSERT"
	ActionUpdate     = "UPDATE"
	ActionDelete     = "DELETE"
	ActionSoftDelete = "SOFT_DELETE"
)

// AuditLog records a mutating operation against a platform record.
type AuditLog struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty" db:"organization_id"`
	TableName      string     `json:"table_name" db:"table_name"`
	RecordID       string     `json:"record_id" db:"record_id"`
	Action         string     `json:"action" db:"action"`
	NewValues      JSONB      `json:"new_values" db:"new_values"`
	ChangedBy      *uuid.UUID `json:"changed_by" db:"changed_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}
