package services

import (
	"context"
	"errors"
	"strings"

	"harborlink/internal/caching"
	"harborlink/internal/common"
	"harborlink/internal/models"
	"harborlink/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrganizationService interface {
	Create(ctx context.Context, req *CreateOrganizationRequest) (*models.Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	Update(ctx context.Context, req *UpdateOrganizationRequest) error
	// Remove hard-deletes an organization with no users or licenses and
	// soft-deactivates one that has either.
	Remove(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, orgType string, limit, offset int) ([]*models.Organization, error)
}

type organizationService struct {
	orgRepo     repositories.OrganizationRepository
	userRepo    repositories.UserRepository
	licenseRepo repositories.LicenseRepository
	cacheSvc    caching.CacheService
}

func NewOrganizationService(
	orgRepo repositories.OrganizationRepository,
	userRepo repositories.UserRepository,
	licenseRepo repositories.LicenseRepository,
	cacheSvc caching.CacheService,
) OrganizationService {
	return &organizationService{
		orgRepo:     orgRepo,
		userRepo:    userRepo,
		licenseRepo: licenseRepo,
		cacheSvc:    cacheSvc,
	}
}

type CreateOrganizationRequest struct {
	Name       string `json:"name" validate:"required"`
	Type       string `json:"type" validate:"required"`
	PortalType string `json:"portal_type"`
}

type UpdateOrganizationRequest struct {
	ID         uuid.UUID
	Name       string `json:"name" validate:"required"`
	PortalType string `json:"portal_type"`
	Active     bool   `json:"active"`
}

func (s *organizationService) Create(ctx context.Context, req *CreateOrganizationRequest) (*models.Organization, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("name is required")
	}
	if !models.ValidOrgType(req.Type) {
		return nil, errors.New("type must be customer or vendor")
	}
	portal := req.PortalType
	if portal == "" {
		portal = req.Type
	}

	org := &models.Organization{
		ID:         uuid.New(),
		Name:       req.Name,
		Type:       req.Type,
		PortalType: portal,
		Active:     true,
	}
	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, common.Persistencef("create organization", err)
	}
	return org, nil
}

func (s *organizationService) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	if s.cacheSvc != nil {
		if org, err := s.cacheSvc.GetOrganization(ctx, id); err == nil && org != nil {
			return org, nil
		}
	}
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("organization %s", id)
		}
		return nil, common.Persistencef("load organization", err)
	}
	if s.cacheSvc != nil {
		_ = s.cacheSvc.SetOrganization(ctx, org)
	}
	return org, nil
}

// Update changes mutable fields only. The organization type is fixed at
// creation and is deliberately absent from the request shape.
func (s *organizationService) Update(ctx context.Context, req *UpdateOrganizationRequest) error {
	existing, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	existing.Name = req.Name
	if req.PortalType != "" {
		existing.PortalType = req.PortalType
	}
	existing.Active = req.Active

	if err := s.orgRepo.Update(ctx, existing); err != nil {
		return common.Persistencef("update organization", err)
	}
	s.invalidate(ctx, req.ID)
	return nil
}

func (s *organizationService) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	users, err := s.userRepo.CountByOrg(ctx, id)
	if err != nil {
		return common.Persistencef("count organization users", err)
	}
	licenses, err := s.licenseRepo.CountByOrg(ctx, id)
	if err != nil {
		return common.Persistencef("count organization licenses", err)
	}

	if users > 0 || licenses > 0 {
		if err := s.orgRepo.Deactivate(ctx, id); err != nil {
			return common.Persistencef("deactivate organization", err)
		}
	} else {
		if err := s.orgRepo.Delete(ctx, id); err != nil {
			return common.Persistencef("delete organization", err)
		}
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *organizationService) List(ctx context.Context, orgType string, limit, offset int) ([]*models.Organization, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.orgRepo.List(ctx, orgType, limit, offset)
}

func (s *organizationService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cacheSvc != nil {
		_ = s.cacheSvc.DeleteOrganization(ctx, id)
	}
}
