package repositories

import (
	"context"

	"harborlink/internal/models"

	"github.com/google/uuid"
)

type AuditLogsRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, orgID *uuid.UUID, tableName string, limit, offset int) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db Database
}

func NewAuditLogsRepo(db Database) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, organization_id, table_name, record_id, action, new_values, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.OrganizationID, entry.TableName, entry.RecordID, entry.Action, entry.NewValues, entry.ChangedBy)
	return err
}

func (r *auditLogsRepo) List(ctx context.Context, orgID *uuid.UUID, tableName string, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, organization_id, table_name, record_id, action, new_values, changed_by, created_at
		FROM audit_logs
		WHERE ($1::uuid IS NULL OR organization_id = $1)
			AND ($2 = '' OR table_name = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, orgID, tableName, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		if err := rows.Scan(
			&entry.ID, &entry.OrganizationID, &entry.TableName, &entry.RecordID, &entry.Action,
			&entry.NewValues, &entry.ChangedBy, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
