package services

import (
	"context"
	"errors"

	"harborlink/internal/common"
	"harborlink/internal/models"
	"harborlink/internal/repositories"

	"github.com/google/uuid"
)

type AuditLogsService interface {
	LogActivity(ctx context.Context, orgID *uuid.UUID, tableName, recordID, action string, changedBy *uuid.UUID, newValues models.JSONB) error
	List(ctx context.Context, orgID *uuid.UUID, tableName string, limit, offset int) ([]*models.AuditLog, error)
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{auditLogsRepo: auditLogsRepo}
}

func (s *auditLogsService) LogActivity(ctx context.Context, orgID *uuid.UUID, tableName, recordID, action string, changedBy *uuid.UUID, newValues models.JSONB) error {
	if tableName == "" {
		return errors.New("table_name is required")
	}
	if action == "" {
		return errors.New("action is required")
	}

	entry := &models.AuditLog{
		ID:             uuid.New(),
		OrganizationID: orgID,
		TableName:      tableName,
		RecordID:       recordID,
		Action:         action,
		NewValues:      newValues,
		ChangedBy:      changedBy,
	}
	if err := s.auditLogsRepo.Create(ctx, entry); err != nil {
		return common.Persistencef("create audit log", err)
	}
	return nil
}

func (s *auditLogsService) List(ctx context.Context, orgID *uuid.UUID, tableName string, limit, offset int) ([]*models.AuditLog, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.auditLogsRepo.List(ctx, orgID, tableName, limit, offset)
}
