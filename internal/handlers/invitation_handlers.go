package handlers

import (
	"net/http"

	"harborlink/internal/common"
	"harborlink/internal/services"

	"github.com/labstack/echo/v4"
)

// InvitationHandlers handles onboarding invitation HTTP requests
type InvitationHandlers struct {
	invitationService services.InvitationService
}

func NewInvitationHandlers(invitationService services.InvitationService) *InvitationHandlers {
	return &InvitationHandlers{invitationService: invitationService}
}

// IssueInvitation handles creating an onboarding invitation. The token
// is returned once here and never again.
func (h *InvitationHandlers) IssueInvitation(c echo.Context) error {
	var req services.IssueInvitationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required")
	}

	invitation, err := h.invitationService.Issue(c.Request().Context(), &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"invitation": invitation,
		"token":      invitation.Token,
	})
}

// RedeemInvitationRequest wraps the token with the onboarding form
type RedeemInvitationRequest struct {
	Token string `json:"token" validate:"required"`
	services.SubmitOnboardingRequest
}

// RedeemInvitation handles redeeming an invitation token and creating
// the onboarding submission. This endpoint is unauthenticated; the
// token is the credential.
func (h *InvitationHandlers) RedeemInvitation(c echo.Context) error {
	var req RedeemInvitationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Token is required")
	}

	record, err := h.invitationService.Redeem(c.Request().Context(), req.Token, &req.SubmitOnboardingRequest)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, record)
}

// ListInvitationsRequest represents query parameters for listing invitations
type ListInvitationsRequest struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// ListInvitations handles getting a list of invitations
func (h *InvitationHandlers) ListInvitations(c echo.Context) error {
	var req ListInvitationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	invitations, err := h.invitationService.List(c.Request().Context(), req.Status, req.Limit, req.Offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"invitations": invitations,
		"limit":       req.Limit,
		"offset":      req.Offset,
	})
}
