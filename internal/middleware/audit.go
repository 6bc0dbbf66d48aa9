package middleware

import (
	"net/http"
	"strings"

	"harborlink/internal/common"
	"harborlink/internal/models"
	"harborlink/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type AuditMiddleware struct {
	auditService services.AuditLogsService
}

func NewAuditMiddleware(auditService services.AuditLogsService) *AuditMiddleware {
	return &AuditMiddleware{auditService: auditService}
}

// Audit records every successful mutating request. Reads are skipped,
// and a failed write to the audit trail never fails the request.
func (m *AuditMiddleware) Audit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil {
				return err
			}

			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return nil
			}
			if c.Response().Status >= http.StatusBadRequest {
				return nil
			}

			ctx := c.Request().Context()
			var orgPtr, userPtr *uuid.UUID
			if orgID, ok := common.GetOrgIDFromContext(ctx); ok {
				orgPtr = &orgID
			}
			if userID, ok := common.GetUserIDFromContext(ctx); ok {
				userPtr = &userID
			}

			values := models.JSONB{
				"method": method,
				"path":   c.Path(),
				"status": c.Response().Status,
			}
			resource := auditResource(c.Path())
			recordID := c.Param("id")

			if logErr := m.auditService.LogActivity(ctx, orgPtr, resource, recordID, methodAction(method), userPtr, values); logErr != nil {
				log.Warnf("audit log write failed: %v", logErr)
			}
			return nil
		}
	}
}

func methodAction(method string) string {
	switch method {
	case http.MethodPost:
		return models.ActionInsert
	case http.MethodDelete:
		return models.ActionDelete
	default:
		return models.ActionUpdate
	}
}

// auditResource reduces a route path like /v1/licenses/:id/suspend to
// the resource segment, "licenses".
func auditResource(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for _, part := range parts {
		if part == "" || part == "v1" {
			continue
		}
		return part
	}
	return path
}
