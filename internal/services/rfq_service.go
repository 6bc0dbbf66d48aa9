package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"harborlink/internal/common"
	"harborlink/internal/models"
	"harborlink/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/gommon/random"
)

type RFQService interface {
	Create(ctx context.Context, req *CreateRFQRequest) (*models.RFQ, error)
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.RFQ, error)
	Update(ctx context.Context, rfq *models.RFQ) error
	Close(ctx context.Context, orgID, id uuid.UUID) error
	List(ctx context.Context, orgID uuid.UUID, filter *models.RFQSearchFilter) ([]*models.RFQ, error)
}

type rfqService struct {
	rfqRepo repositories.RFQRepository
	orgRepo repositories.OrganizationRepository
}

func NewRFQService(rfqRepo repositories.RFQRepository, orgRepo repositories.OrganizationRepository) RFQService {
	return &rfqService{rfqRepo: rfqRepo, orgRepo: orgRepo}
}

type CreateRFQRequest struct {
	OrganizationID uuid.UUID  `json:"organization_id"`
	Title          string     `json:"title" validate:"required"`
	Description    *string    `json:"description,omitempty"`
	VesselID       *uuid.UUID `json:"vessel_id,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	CreatedBy      uuid.UUID  `json:"-"`
}

func (s *rfqService) Create(ctx context.Context, req *CreateRFQRequest) (*models.RFQ, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errors.New("title is required")
	}

	org, err := s.orgRepo.GetByID(ctx, req.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("organization %s", req.OrganizationID)
		}
		return nil, common.Persistencef("load organization", err)
	}
	if !org.Active {
		return nil, errors.New("organization is inactive")
	}

	rfq := &models.RFQ{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Reference:      fmt.Sprintf("RFQ-%s", random.String(8, random.Uppercase, random.Numeric)),
		Title:          req.Title,
		Description:    req.Description,
		VesselID:       req.VesselID,
		Status:         models.RFQOpen,
		DueDate:        req.DueDate,
		CreatedBy:      req.CreatedBy,
	}
	if err := s.rfqRepo.Create(ctx, rfq); err != nil {
		return nil, common.Persistencef("create rfq", err)
	}
	return rfq, nil
}

func (s *rfqService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.RFQ, error) {
	rfq, err := s.rfqRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("rfq %s", id)
		}
		return nil, common.Persistencef("load rfq", err)
	}
	return rfq, nil
}

func (s *rfqService) Update(ctx context.Context, rfq *models.RFQ) error {
	existing, err := s.GetByID(ctx, rfq.OrganizationID, rfq.ID)
	if err != nil {
		return err
	}
	if existing.Status == models.RFQClosed || existing.Status == models.RFQCancelled {
		return common.InvalidTransitionf("rfq %s is %s", rfq.ID, existing.Status)
	}
	if err := s.rfqRepo.Update(ctx, rfq); err != nil {
		return common.Persistencef("update rfq", err)
	}
	return nil
}

func (s *rfqService) Close(ctx context.Context, orgID, id uuid.UUID) error {
	existing, err := s.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if existing.Status == models.RFQClosed || existing.Status == models.RFQCancelled {
		return common.InvalidTransitionf("rfq %s is already %s", id, existing.Status)
	}
	if err := s.rfqRepo.UpdateStatus(ctx, orgID, id, models.RFQClosed); err != nil {
		return common.Persistencef("close rfq", err)
	}
	return nil
}

func (s *rfqService) List(ctx context.Context, orgID uuid.UUID, filter *models.RFQSearchFilter) ([]*models.RFQ, error) {
	return s.rfqRepo.List(ctx, orgID, filter)
}
