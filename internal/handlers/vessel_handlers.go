package handlers

import (
	"net/http"

	"harborlink/internal/common"
	"harborlink/internal/services"

	"github.com/labstack/echo/v4"
)

// VesselHandlers handles vessel HTTP requests
type VesselHandlers struct {
	vesselService services.VesselService
}

func NewVesselHandlers(vesselService services.VesselService) *VesselHandlers {
	return &VesselHandlers{vesselService: vesselService}
}

// ListVesselsRequest represents query parameters for listing vessels
type ListVesselsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListVessels handles getting the calling organization's vessels
func (h *VesselHandlers) ListVessels(c echo.Context) error {
	orgID, ok := common.GetOrgIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Organization context required")
	}

	var req ListVesselsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	vessels, err := h.vesselService.List(c.Request().Context(), orgID, req.Limit, req.Offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"vessels": vessels,
		"limit":   req.Limit,
		"offset":  req.Offset,
	})
}

// CreateVessel handles registering a vessel. Registration consumes one
// unit of the organization's vessel allowance.
func (h *VesselHandlers) CreateVessel(c echo.Context) error {
	orgID, ok := common.GetOrgIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Organization context required")
	}

	var req services.CreateVesselRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Vessel name is required")
	}
	req.OrganizationID = orgID

	vessel, err := h.vesselService.Create(c.Request().Context(), &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, vessel)
}

// GetVessel handles getting vessel details by ID
func (h *VesselHandlers) GetVessel(c echo.Context) error {
	orgID, ok := common.GetOrgIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Organization context required")
	}

	vesselID, err := common.ValidateUUID(c.Param("id"), "vessel ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	vessel, err := h.vesselService.GetByID(c.Request().Context(), orgID, vesselID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, vessel)
}

// UpdateVesselRequest represents the vessel update payload
type UpdateVesselRequest struct {
	Name      *string `json:"name"`
	IMONumber *string `json:"imo_number"`
	Flag      *string `json:"flag"`
	Status    *string `json:"status"`
}

// UpdateVessel handles updating vessel details
func (h *VesselHandlers) UpdateVessel(c echo.Context) error {
	orgID, ok := common.GetOrgIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Organization context required")
	}

	vesselID, err := common.ValidateUUID(c.Param("id"), "vessel ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req UpdateVesselRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	vessel, err := h.vesselService.GetByID(c.Request().Context(), orgID, vesselID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	if req.Name != nil {
		vessel.Name = *req.Name
	}
	if req.IMONumber != nil {
		vessel.IMONumber = req.IMONumber
	}
	if req.Flag != nil {
		vessel.Flag = req.Flag
	}
	if req.Status != nil {
		vessel.Status = *req.Status
	}

	if err := h.vesselService.Update(c.Request().Context(), vessel); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, vessel)
}

// DeleteVessel handles removing a vessel from the registry
func (h *VesselHandlers) DeleteVessel(c echo.Context) error {
	orgID, ok := common.GetOrgIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Organization context required")
	}

	vesselID, err := common.ValidateUUID(c.Param("id"), "vessel ID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.vesselService.Delete(c.Request().Context(), orgID, vesselID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Vessel removed successfully",
	})
}
