package services

import (
	"context"
	"errors"
	"strings"

	"harborlink/internal/common"
	"harborlink/internal/models"
	"harborlink/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type VesselService interface {
	Create(ctx context.Context, req *CreateVesselRequest) (*models.Vessel, error)
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Vessel, error)
	Update(ctx context.Context, vessel *models.Vessel) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Vessel, error)
}

type vesselService struct {
	db         repositories.TxDatabase
	vesselRepo repositories.VesselRepository
	orgRepo    repositories.OrganizationRepository
	licenseSvc LicenseService
}

func NewVesselService(
	db repositories.TxDatabase,
	vesselRepo repositories.VesselRepository,
	orgRepo repositories.OrganizationRepository,
	licenseSvc LicenseService,
) VesselService {
	return &vesselService{
		db:         db,
		vesselRepo: vesselRepo,
		orgRepo:    orgRepo,
		licenseSvc: licenseSvc,
	}
}

type CreateVesselRequest struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name" validate:"required"`
	IMONumber      *string   `json:"imo_number,omitempty"`
	Flag           *string   `json:"flag,omitempty"`
}

// Create inserts the vessel and draws down the licensed vessel quota in
// one transaction, so the counter can never drift from the fleet size.
func (s *vesselService) Create(ctx context.Context, req *CreateVesselRequest) (*models.Vessel, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("name is required")
	}

	org, err := s.orgRepo.GetByID(ctx, req.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("organization %s", req.OrganizationID)
		}
		return nil, common.Persistencef("load organization", err)
	}
	if org.Type != models.OrgTypeCustomer {
		return nil, errors.New("only customer organizations register vessels")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.Persistencef("begin vessel create", err)
	}
	defer tx.Rollback(ctx)

	if err := s.licenseSvc.ConsumeUsageIn(ctx, tx, org.ID, models.ResourceVessels); err != nil {
		return nil, err
	}

	vessel := &models.Vessel{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Name:           req.Name,
		IMONumber:      req.IMONumber,
		Flag:           req.Flag,
		Status:         "active",
	}
	if err := s.vesselRepo.WithTx(tx).Create(ctx, vessel); err != nil {
		return nil, common.Persistencef("create vessel", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.Persistencef("commit vessel create", err)
	}
	return vessel, nil
}

func (s *vesselService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Vessel, error) {
	vessel, err := s.vesselRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("vessel %s", id)
		}
		return nil, common.Persistencef("load vessel", err)
	}
	return vessel, nil
}

func (s *vesselService) Update(ctx context.Context, vessel *models.Vessel) error {
	if _, err := s.GetByID(ctx, vessel.OrganizationID, vessel.ID); err != nil {
		return err
	}
	if err := s.vesselRepo.Update(ctx, vessel); err != nil {
		return common.Persistencef("update vessel", err)
	}
	return nil
}

func (s *vesselService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, orgID, id); err != nil {
		return err
	}
	if err := s.vesselRepo.Delete(ctx, orgID, id); err != nil {
		return common.Persistencef("delete vessel", err)
	}
	return nil
}

func (s *vesselService) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Vessel, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.vesselRepo.List(ctx, orgID, limit, offset)
}
