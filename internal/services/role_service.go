package services

import (
	"context"
	"errors"
	"strings"

	"harborlink/internal/authz"
	"harborlink/internal/common"
	"harborlink/internal/models"
	"harborlink/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RoleService interface {
	Create(ctx context.Context, req *CreateRoleRequest) (*models.Role, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	Update(ctx context.Context, req *UpdateRoleRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, portalType string, limit, offset int) ([]*models.Role, error)
}

type roleService struct {
	roleRepo repositories.RoleRepository
}

func NewRoleService(roleRepo repositories.RoleRepository) RoleService {
	return &roleService{roleRepo: roleRepo}
}

type CreateRoleRequest struct {
	PortalType  string   `json:"portal_type" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleRequest struct {
	ID          uuid.UUID
	Name        string   `json:"name" validate:"required"`
	Permissions []string `json:"permissions"`
}

// validatePermissions rejects keys outside the portal's closed
// vocabulary. A role may carry an empty grant list, never a nil one.
func validatePermissions(portalType string, perms []string) ([]string, error) {
	if perms == nil {
		perms = []string{}
	}
	for _, p := range perms {
		if !authz.PermissionInPortal(portalType, p) {
			return nil, errors.New("permission " + p + " is not part of the " + portalType + " portal vocabulary")
		}
	}
	return perms, nil
}

func (s *roleService) Create(ctx context.Context, req *CreateRoleRequest) (*models.Role, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("name is required")
	}
	perms, err := validatePermissions(req.PortalType, req.Permissions)
	if err != nil {
		return nil, err
	}

	role := &models.Role{
		ID:          uuid.New(),
		PortalType:  req.PortalType,
		Name:        req.Name,
		Permissions: perms,
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, common.Persistencef("create role", err)
	}
	return role, nil
}

func (s *roleService) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("role %s", id)
		}
		return nil, common.Persistencef("load role", err)
	}
	return role, nil
}

func (s *roleService) Update(ctx context.Context, req *UpdateRoleRequest) error {
	existing, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	perms, err := validatePermissions(existing.PortalType, req.Permissions)
	if err != nil {
		return err
	}

	existing.Name = req.Name
	existing.Permissions = perms
	if err := s.roleRepo.Update(ctx, existing); err != nil {
		return common.Persistencef("update role", err)
	}
	return nil
}

// Delete removes the role. Users referencing it keep their assignment;
// their authorization degrades to no permissions until reassigned.
func (s *roleService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.roleRepo.Delete(ctx, id); err != nil {
		return common.Persistencef("delete role", err)
	}
	return nil
}

func (s *roleService) List(ctx context.Context, portalType string, limit, offset int) ([]*models.Role, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.roleRepo.List(ctx, portalType, limit, offset)
}
