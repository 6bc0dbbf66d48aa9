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
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, req *UpdateUserRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, orgID *uuid.UUID, limit, offset int) ([]*models.User, error)
}

type userService struct {
	db         repositories.TxDatabase
	userRepo   repositories.UserRepository
	licenseSvc LicenseService
	cacheSvc   caching.CacheService
}

func NewUserService(db repositories.TxDatabase, userRepo repositories.UserRepository, licenseSvc LicenseService, cacheSvc caching.CacheService) UserService {
	return &userService{
		db:         db,
		userRepo:   userRepo,
		licenseSvc: licenseSvc,
		cacheSvc:   cacheSvc,
	}
}

type CreateUserRequest struct {
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	Email          string     `json:"email" validate:"required"`
	Password       string     `json:"password" validate:"required,min=8"`
	FullName       string     `json:"full_name" validate:"required"`
	RoleID         *uuid.UUID `json:"role_id,omitempty"`
	RoleLabel      string     `json:"role_label"`
	PortalType     string     `json:"portal_type"`
}

type UpdateUserRequest struct {
	ID        uuid.UUID
	Email     string     `json:"email" validate:"required"`
	FullName  string     `json:"full_name" validate:"required"`
	RoleID    *uuid.UUID `json:"role_id,omitempty"`
	RoleLabel string     `json:"role_label"`
	Status    string     `json:"status"`
}

func (s *userService) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.FullName) == "" {
		return nil, errors.New("email and full_name are required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	portal := req.PortalType
	if portal == "" {
		portal = "admin"
	}
	user := &models.User{
		ID:             uuid.New(),
		OrganizationID: req.OrganizationID,
		Email:          req.Email,
		PasswordHash:   string(hash),
		FullName:       req.FullName,
		RoleID:         req.RoleID,
		RoleLabel:      req.RoleLabel,
		PortalType:     portal,
		Status:         "active",
	}

	// Seat draw-down and insert move as one unit, so a failed insert
	// cannot strand a consumed seat.
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.Persistencef("begin user create", err)
	}
	defer tx.Rollback(ctx)

	// Organization users draw down the licensed seat quota. Platform
	// admins have no organization and no quota.
	if req.OrganizationID != nil {
		if err := s.licenseSvc.ConsumeUsageIn(ctx, tx, *req.OrganizationID, models.ResourceUsers); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.WithTx(tx).Create(ctx, user); err != nil {
		return nil, common.Persistencef("create user", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.Persistencef("commit user create", err)
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("user %s", id)
		}
		return nil, common.Persistencef("load user", err)
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("user %s", email)
		}
		return nil, common.Persistencef("load user", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, req *UpdateUserRequest) error {
	existing, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	existing.Email = req.Email
	existing.FullName = req.FullName
	existing.RoleID = req.RoleID
	existing.RoleLabel = req.RoleLabel
	if req.Status != "" {
		existing.Status = req.Status
	}

	if err := s.userRepo.Update(ctx, existing); err != nil {
		return common.Persistencef("update user", err)
	}
	// Role assignments feed authorization; stale grants must not
	// outlive the change.
	if s.cacheSvc != nil {
		_ = s.cacheSvc.DeletePermissions(ctx, req.ID)
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return common.Persistencef("delete user", err)
	}
	if s.cacheSvc != nil {
		_ = s.cacheSvc.DeletePermissions(ctx, id)
	}
	return nil
}

func (s *userService) List(ctx context.Context, orgID *uuid.UUID, limit, offset int) ([]*models.User, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.userRepo.List(ctx, orgID, limit, offset)
}
