package services

import (
	"context"
	"errors"

	"harborlink/internal/authz"
	"harborlink/internal/caching"
	"harborlink/internal/common"
	"harborlink/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RBACService resolves an actor's effective permission grants. Grants
// come from the user's assigned role row when one exists; a dangling
// role reference degrades to no permissions. Users without an explicit
// role assignment fall back to the heuristic classification of their
// role label.
type RBACService interface {
	EffectiveGrants(ctx context.Context, userID uuid.UUID) (map[string]bool, error)
	UserHasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error)
	GetUserPermissions(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type rbacService struct {
	userRepo repositories.UserRepository
	roleRepo repositories.RoleRepository
	cacheSvc caching.CacheService
}

func NewRBACService(userRepo repositories.UserRepository, roleRepo repositories.RoleRepository, cacheSvc caching.CacheService) RBACService {
	return &rbacService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		cacheSvc: cacheSvc,
	}
}

func (s *rbacService) EffectiveGrants(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	if s.cacheSvc != nil {
		if perms, err := s.cacheSvc.GetPermissions(ctx, userID); err == nil && perms != nil {
			return permissionSet(perms), nil
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("user %s", userID)
		}
		return nil, common.Persistencef("load user", err)
	}

	grants := map[string]bool{}
	switch {
	case user.RoleID != nil:
		role, err := s.roleRepo.GetByID(ctx, *user.RoleID)
		if err != nil {
			// Deleted roles must not error an authorization check;
			// the user simply has no permissions until reassigned.
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, common.Persistencef("load role", err)
			}
		} else {
			for _, p := range role.Permissions {
				if authz.PermissionInPortal(role.PortalType, p) {
					grants[p] = true
				}
			}
		}
	default:
		grants = authz.Grants(authz.ResolveRole(user.RoleLabel))
	}

	if s.cacheSvc != nil {
		_ = s.cacheSvc.SetPermissions(ctx, userID, permissionList(grants))
	}
	return grants, nil
}

func (s *rbacService) UserHasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error) {
	grants, err := s.EffectiveGrants(ctx, userID)
	if err != nil {
		return false, err
	}
	return authz.HasGrant(grants, permission), nil
}

func (s *rbacService) GetUserPermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	grants, err := s.EffectiveGrants(ctx, userID)
	if err != nil {
		return nil, err
	}
	return permissionList(grants), nil
}

func permissionSet(perms []string) map[string]bool {
	set := make(map[string]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

func permissionList(grants map[string]bool) []string {
	perms := make([]string, 0, len(grants))
	for p := range grants {
		perms = append(perms, p)
	}
	return perms
}
