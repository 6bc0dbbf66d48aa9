package handlers

import (
	"net/http"

	"harborlink/internal/common"
	"harborlink/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuditLogsHandlers handles audit trail HTTP requests
type AuditLogsHandlers struct {
	auditService services.AuditLogsService
}

func NewAuditLogsHandlers(auditService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditService: auditService}
}

// ListAuditLogsRequest represents query parameters for listing audit logs
type ListAuditLogsRequest struct {
	OrganizationID string `query:"organization_id"`
	Table          string `query:"table"`
	Limit          int    `query:"limit"`
	Offset         int    `query:"offset"`
}

// ListAuditLogs handles getting the audit trail
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	var req ListAuditLogsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	var orgID *uuid.UUID
	if req.OrganizationID != "" {
		parsed, err := uuid.Parse(req.OrganizationID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid organization ID format")
		}
		orgID = &parsed
	}

	logs, err := h.auditService.List(c.Request().Context(), orgID, req.Table, req.Limit, req.Offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"audit_logs": logs,
		"limit":      req.Limit,
		"offset":     req.Offset,
	})
}
