package services

import (
	"context"
	"errors"
	"time"

	"harborlink/internal/common"
	"harborlink/internal/models"
	"harborlink/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Default entitlement caps seeded into new licenses.
const (
	defaultUserLimit         = 25
	defaultItemLimit         = 500
	defaultVendorItemLimit   = 1000
	defaultEmployeeLimit     = 100
	defaultBusinessUnitLimit = 5
	minVesselLimit           = 1
)

// LicenseService owns license issuance, lifecycle transitions and the
// usage counter contract exposed to resource-creation paths.
type LicenseService interface {
	// CanIssueLicense is the single-license invariant guard: true only
	// when no active or suspended license exists for the organization.
	CanIssueLicense(ctx context.Context, orgID uuid.UUID) (bool, error)
	// Issue creates a license outside the onboarding flow (manual admin
	// issuance), still subject to the invariant guard.
	Issue(ctx context.Context, orgID uuid.UUID, requestedVessels int) (*models.License, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.License, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.License, error)
	Suspend(ctx context.Context, id uuid.UUID) error
	Revoke(ctx context.Context, id uuid.UUID) error
	// ConsumeUsage increments the organization's usage counter for one
	// resource, failing with ErrLimitExceeded instead of passing the cap.
	ConsumeUsage(ctx context.Context, orgID uuid.UUID, resource string) error
	// ConsumeUsageIn runs the same increment against a caller-supplied
	// transaction so resource insert and counter move as one unit.
	ConsumeUsageIn(ctx context.Context, tx repositories.Database, orgID uuid.UUID, resource string) error
}

type licenseService struct {
	db          repositories.TxDatabase
	licenseRepo repositories.LicenseRepository
	orgRepo     repositories.OrganizationRepository
	now         func() time.Time
}

func NewLicenseService(db repositories.TxDatabase, licenseRepo repositories.LicenseRepository, orgRepo repositories.OrganizationRepository) LicenseService {
	return &licenseService{
		db:          db,
		licenseRepo: licenseRepo,
		orgRepo:     orgRepo,
		now:         time.Now,
	}
}

// DeriveLicense computes the license for a freshly approved organization.
// Pure: same inputs, same output. Customer organizations get a vessels
// cap derived from the requested count, floored at one; vendors get no
// vessels cap at all.
func DeriveLicense(orgType string, requestedVessels int, now time.Time) *models.License {
	limits := models.UsageCounts{
		models.ResourceUsers:         defaultUserLimit,
		models.ResourceEmployees:     defaultEmployeeLimit,
		models.ResourceBusinessUnits: defaultBusinessUnitLimit,
	}
	usage := models.UsageCounts{
		models.ResourceUsers:         0,
		models.ResourceEmployees:     0,
		models.ResourceBusinessUnits: 0,
		models.ResourceItems:         0,
	}

	if orgType == models.OrgTypeCustomer {
		vessels := requestedVessels
		if vessels < minVesselLimit {
			vessels = minVesselLimit
		}
		limits[models.ResourceVessels] = vessels
		limits[models.ResourceItems] = defaultItemLimit
		usage[models.ResourceVessels] = 0
	} else {
		limits[models.ResourceItems] = defaultVendorItemLimit
	}

	return &models.License{
		ID:           uuid.New(),
		Status:       models.LicenseActive,
		UsageLimits:  limits,
		CurrentUsage: usage,
		IssuedAt:     now,
	}
}

func (s *licenseService) CanIssueLicense(ctx context.Context, orgID uuid.UUID) (bool, error) {
	blocking, err := s.licenseRepo.GetBlockingByOrg(ctx, orgID)
	if err != nil {
		return false, common.Persistencef("check existing license", err)
	}
	return blocking == nil, nil
}

func (s *licenseService) Issue(ctx context.Context, orgID uuid.UUID, requestedVessels int) (*models.License, error) {
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("organization %s", orgID)
		}
		return nil, common.Persistencef("load organization", err)
	}

	ok, err := s.CanIssueLicense(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.InvalidTransitionf("organization %s already holds a license", orgID)
	}

	lic := DeriveLicense(org.Type, requestedVessels, s.now())
	lic.OrganizationID = orgID
	if err := s.licenseRepo.Create(ctx, lic); err != nil {
		return nil, common.Persistencef("create license", err)
	}
	return lic, nil
}

func (s *licenseService) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	lic, err := s.licenseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("license %s", id)
		}
		return nil, common.Persistencef("load license", err)
	}
	return lic, nil
}

func (s *licenseService) List(ctx context.Context, status string, limit, offset int) ([]*models.License, error) {
	return s.licenseRepo.List(ctx, status, limit, offset)
}

func (s *licenseService) Suspend(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, models.LicenseSuspended, models.LicenseActive)
}

func (s *licenseService) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, models.LicenseRevoked, models.LicenseActive, models.LicenseSuspended, models.LicenseExpired)
}

func (s *licenseService) transition(ctx context.Context, id uuid.UUID, target string, allowedFrom ...string) error {
	lic, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	allowed := false
	for _, from := range allowedFrom {
		if lic.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return common.InvalidTransitionf("license %s is %s, cannot become %s", id, lic.Status, target)
	}
	if err := s.licenseRepo.UpdateStatus(ctx, id, target); err != nil {
		return common.Persistencef("update license status", err)
	}
	return nil
}

func (s *licenseService) ConsumeUsage(ctx context.Context, orgID uuid.UUID, resource string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return common.Persistencef("begin usage update", err)
	}
	defer tx.Rollback(ctx)

	if err := s.ConsumeUsageIn(ctx, tx, orgID, resource); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return common.Persistencef("commit usage update", err)
	}
	return nil
}

func (s *licenseService) ConsumeUsageIn(ctx context.Context, tx repositories.Database, orgID uuid.UUID, resource string) error {
	repo := s.licenseRepo.WithTx(tx)
	lic, err := repo.GetForUpdateByOrg(ctx, orgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NotFoundf("active license for organization %s", orgID)
		}
		return common.Persistencef("lock license", err)
	}

	if !lic.HasCapacity(resource) {
		return common.LimitExceededf("%s limit of %d reached for organization %s",
			resource, lic.UsageLimits[resource], orgID)
	}

	if lic.CurrentUsage == nil {
		lic.CurrentUsage = models.UsageCounts{}
	}
	lic.CurrentUsage[resource]++
	if err := repo.UpdateUsage(ctx, lic.ID, lic.CurrentUsage); err != nil {
		return common.Persistencef("update usage counters", err)
	}
	return nil
}
