package handlers

import (
	"net/http"

	"harborlink/internal/common"
	"harborlink/internal/models"
	"harborlink/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RFQHandlers handles request-for-quotation HTTP requests
type RFQHandlers struct {
	rfqService services.RFQService
}

func NewRFQHandlers(rfqService services.RFQService) *RFQHandlers {
	return &RFQHandlers{rfqService: rfqService}
}

// ListRFQsRequest represents query parameters for listing RFQs
type ListRFQsRequest struct {
	Status   string `query:"status"`
	VesselID string `query:"vessel_id"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}

// ListRFQs handles searching the calling organization's RFQs
func (h *RFQHandlers) ListRFQs(c echo.Context) error {
	orgID, ok := common.GetOrgIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Organization context required")
	}

	var req ListRFQsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	filter := &models.RFQSearchFilter{}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)
	if req.Status != "" {
		filter.Status = &req.Status
	}
	if req.VesselID != "" {
		vesselID, err := uuid.Parse(req.VesselID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid vessel ID format")
		}
		filter.VesselID = &vesselID
	}

	rfqs, err := h.rfqService.List(c.Request().Context(), orgID, filter)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"rfqs":   rfqs,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// CreateRFQ handles opening a new RFQ
func (h *RFQHandlers) CreateRFQ(c echo.Context) error {
	ctx := c.Request().Context()
	orgID, ok := common.GetOrgIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Organization context required")
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	var req services.CreateRFQRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title is required")
	}
	req.OrganizationID = orgID
	req.CreatedBy = userID

	rfq, err := h.rfqService.Create(ctx, &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, rfq)
}

// GetRFQ handles getting RFQ details by ID
func (h *RFQHandlers) GetRFQ(c echo.Context) error {
	orgID, ok := common.GetOrgIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Organization context required")
	}

	rfqID, err := common.ValidateUUID(c.Param("id"), "RFQ ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rfq, err := h.rfqService.GetByID(c.Request().Context(), orgID, rfqID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, rfq)
}

// UpdateRFQRequest represents the RFQ update payload
type UpdateRFQRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// UpdateRFQ handles updating an open RFQ
func (h *RFQHandlers) UpdateRFQ(c echo.Context) error {
	orgID, ok := common.GetOrgIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Organization context required")
	}

	rfqID, err := common.ValidateUUID(c.Param("id"), "RFQ ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req UpdateRFQRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	rfq, err := h.rfqService.GetByID(c.Request().Context(), orgID, rfqID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	if req.Title != nil {
		rfq.Title = *req.Title
	}
	if req.Description != nil {
		rfq.Description = req.Description
	}
	if req.Status != nil {
		rfq.Status = *req.Status
	}

	if err := h.rfqService.Update(c.Request().Context(), rfq); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, rfq)
}

// CloseRFQ handles closing an RFQ
func (h *RFQHandlers) CloseRFQ(c echo.Context) error {
	orgID, ok := common.GetOrgIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Organization context required")
	}

	rfqID, err := common.ValidateUUID(c.Param("id"), "RFQ ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.rfqService.Close(c.Request().Context(), orgID, rfqID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "RFQ closed",
	})
}
