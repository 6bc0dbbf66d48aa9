package handlers

import (
	"net/http"
	"time"

	"harborlink/internal/common"
	"harborlink/internal/services"

	"github.com/labstack/echo/v4"
)

// OnboardingHandlers handles onboarding review HTTP requests
type OnboardingHandlers struct {
	onboardingService services.OnboardingService
	documentService   services.DocumentService
}

func NewOnboardingHandlers(onboardingService services.OnboardingService, documentService services.DocumentService) *OnboardingHandlers {
	return &OnboardingHandlers{
		onboardingService: onboardingService,
		documentService:   documentService,
	}
}

// ListOnboardingsRequest represents query parameters for listing onboardings
type ListOnboardingsRequest struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// ListOnboardings handles getting a list of onboarding submissions
func (h *OnboardingHandlers) ListOnboardings(c echo.Context) error {
	var req ListOnboardingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	records, err := h.onboardingService.List(c.Request().Context(), req.Status, req.Limit, req.Offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"onboardings": records,
		"limit":       req.Limit,
		"offset":      req.Offset,
	})
}

// GetOnboarding handles getting onboarding details by ID
func (h *OnboardingHandlers) GetOnboarding(c echo.Context) error {
	onboardingID, err := common.ValidateUUID(c.Param("id"), "onboarding ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	record, err := h.onboardingService.GetByID(c.Request().Context(), onboardingID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, record)
}

// ApproveOnboarding handles approving a submission. Approval and
// license provisioning commit together, and replaying an approve on an
// already approved record returns the existing outcome.
func (h *OnboardingHandlers) ApproveOnboarding(c echo.Context) error {
	onboardingID, err := common.ValidateUUID(c.Param("id"), "onboarding ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reviewerID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	result, err := h.onboardingService.Approve(c.Request().Context(), onboardingID, reviewerID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"onboarding": result.Onboarding,
		"license_id": result.LicenseID,
	})
}

// RejectOnboardingRequest represents the rejection payload
type RejectOnboardingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// RejectOnboarding handles rejecting a submission
func (h *OnboardingHandlers) RejectOnboarding(c echo.Context) error {
	onboardingID, err := common.ValidateUUID(c.Param("id"), "onboarding ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reviewerID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	var req RejectOnboardingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	record, err := h.onboardingService.Reject(c.Request().Context(), onboardingID, reviewerID, req.Reason)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, record)
}

// UploadDocument handles attaching a supporting document to an
// onboarding submission
func (h *OnboardingHandlers) UploadDocument(c echo.Context) error {
	onboardingID, err := common.ValidateUUID(c.Param("id"), "onboarding ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	record, err := h.onboardingService.GetByID(c.Request().Context(), onboardingID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	file, err := c.FormFile("document")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Document file is required")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to read uploaded file")
	}
	defer src.Close()

	objectName, err := h.documentService.UploadOnboardingDocument(
		c.Request().Context(),
		record.OrganizationID,
		record.ID,
		file.Filename,
		file.Header.Get("Content-Type"),
		src,
		file.Size,
	)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"object_name": objectName,
	})
}

// GetDocumentURL handles generating a short-lived download URL for an
// onboarding document
func (h *OnboardingHandlers) GetDocumentURL(c echo.Context) error {
	objectName := c.QueryParam("object")
	if objectName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Object name is required")
	}

	url, err := h.documentService.GetDocumentURL(c.Request().Context(), objectName, 15*time.Minute)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"url": url,
	})
}
