package services

import (
	"context"
	"errors"
	"log"
	"time"

	"harborlink/internal/authz"
	"harborlink/internal/common"
	"harborlink/internal/models"
	"harborlink/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Review decisions passed to the notifier.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// DecisionNotifier delivers the review outcome to the submitting
// contact. Delivery is best effort and happens after commit; a failed
// enqueue never rolls back a review.
type DecisionNotifier interface {
	NotifyDecision(ctx context.Context, rec *models.OnboardingRecord, decision string, reason *string) error
}

// ApprovalResult couples the updated record with the license backing it.
// On idempotent replay LicenseID is the originally issued license.
type ApprovalResult struct {
	Onboarding *models.OnboardingRecord `json:"onboarding"`
	LicenseID  uuid.UUID                `json:"license_id"`
}

// OnboardingService is the review workflow: the only state machine in
// the platform core. Approve and Reject validate transitions, re-check
// the reviewer's permissions server-side, and run their writes as one
// transactional unit.
type OnboardingService interface {
	Approve(ctx context.Context, onboardingID, reviewerID uuid.UUID) (*ApprovalResult, error)
	Reject(ctx context.Context, onboardingID, reviewerID uuid.UUID, reason *string) (*models.OnboardingRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.OnboardingRecord, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.OnboardingRecord, error)
}

type onboardingService struct {
	db             repositories.TxDatabase
	onboardingRepo repositories.OnboardingRepository
	licenseRepo    repositories.LicenseRepository
	orgRepo        repositories.OrganizationRepository
	rbac           RBACService
	notifier       DecisionNotifier
	now            func() time.Time
}

func NewOnboardingService(
	db repositories.TxDatabase,
	onboardingRepo repositories.OnboardingRepository,
	licenseRepo repositories.LicenseRepository,
	orgRepo repositories.OrganizationRepository,
	rbac RBACService,
	notifier DecisionNotifier,
) OnboardingService {
	return &onboardingService{
		db:             db,
		onboardingRepo: onboardingRepo,
		licenseRepo:    licenseRepo,
		orgRepo:        orgRepo,
		rbac:           rbac,
		notifier:       notifier,
		now:            time.Now,
	}
}

func (s *onboardingService) Approve(ctx context.Context, onboardingID, reviewerID uuid.UUID) (*ApprovalResult, error) {
	grants, err := s.rbac.EffectiveGrants(ctx, reviewerID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.Persistencef("begin approval", err)
	}
	defer tx.Rollback(ctx)

	obRepo := s.onboardingRepo.WithTx(tx)
	licRepo := s.licenseRepo.WithTx(tx)

	rec, err := obRepo.GetForUpdate(ctx, onboardingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("onboarding %s", onboardingID)
		}
		return nil, common.Persistencef("load onboarding", err)
	}

	org, err := s.orgRepo.GetByID(ctx, rec.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("organization %s", rec.OrganizationID)
		}
		return nil, common.Persistencef("load organization", err)
	}

	// The client-side role display is advisory only; the issuing grant
	// for the organization's type is verified here, at the boundary.
	if !authz.HasGrant(grants, authz.PermLicensesIssue) ||
		!authz.HasGrant(grants, authz.OrgManagePermission(org.Type)) {
		return nil, common.Unauthorizedf("reviewer %s may not issue licenses for %s organizations", reviewerID, org.Type)
	}

	// Duplicate-approval guard: replay returns the original license and
	// performs no writes.
	if rec.Status == models.OnboardingApproved {
		lic, err := licRepo.GetNonRevokedByOrg(ctx, org.ID)
		if err != nil {
			return nil, common.Persistencef("load existing license", err)
		}
		if lic == nil {
			return nil, common.NotFoundf("license for approved onboarding %s", onboardingID)
		}
		return &ApprovalResult{Onboarding: rec, LicenseID: lic.ID}, nil
	}
	if !rec.Reviewable() {
		return nil, common.InvalidTransitionf("onboarding %s is %s", onboardingID, rec.Status)
	}

	// A live license elsewhere for the same organization, including a
	// suspended one, blocks issuance; reactivation is an explicit admin
	// action, never a review side effect.
	blocking, err := licRepo.GetBlockingByOrg(ctx, org.ID)
	if err != nil {
		return nil, common.Persistencef("check existing license", err)
	}
	if blocking != nil {
		return nil, common.InvalidTransitionf("organization %s already holds a %s license", org.ID, blocking.Status)
	}

	lic := DeriveLicense(org.Type, rec.RequestedVessels, s.now())
	lic.OrganizationID = org.ID
	if err := licRepo.Create(ctx, lic); err != nil {
		return nil, common.Persistencef("create license", err)
	}

	reviewedAt := s.now()
	rec.Status = models.OnboardingApproved
	rec.RejectionReason = nil
	rec.ReviewerID = &reviewerID
	rec.ReviewedAt = &reviewedAt
	if err := obRepo.UpdateReview(ctx, rec); err != nil {
		return nil, common.Persistencef("update onboarding status", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.Persistencef("commit approval", err)
	}

	s.notify(ctx, rec, DecisionApproved, nil)
	return &ApprovalResult{Onboarding: rec, LicenseID: lic.ID}, nil
}

func (s *onboardingService) Reject(ctx context.Context, onboardingID, reviewerID uuid.UUID, reason *string) (*models.OnboardingRecord, error) {
	grants, err := s.rbac.EffectiveGrants(ctx, reviewerID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.Persistencef("begin rejection", err)
	}
	defer tx.Rollback(ctx)

	obRepo := s.onboardingRepo.WithTx(tx)

	rec, err := obRepo.GetForUpdate(ctx, onboardingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("onboarding %s", onboardingID)
		}
		return nil, common.Persistencef("load onboarding", err)
	}

	org, err := s.orgRepo.GetByID(ctx, rec.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("organization %s", rec.OrganizationID)
		}
		return nil, common.Persistencef("load organization", err)
	}

	if !authz.HasGrant(grants, authz.PermOnboardingReview) ||
		!authz.HasGrant(grants, authz.OrgManagePermission(org.Type)) {
		return nil, common.Unauthorizedf("reviewer %s may not review %s organizations", reviewerID, org.Type)
	}

	// Terminal states never flip: rejecting an approved record is an
	// error, not a silent success.
	if !rec.Reviewable() {
		return nil, common.InvalidTransitionf("onboarding %s is %s", onboardingID, rec.Status)
	}

	reviewedAt := s.now()
	rec.Status = models.OnboardingRejected
	rec.RejectionReason = reason
	rec.ReviewerID = &reviewerID
	rec.ReviewedAt = &reviewedAt
	if err := obRepo.UpdateReview(ctx, rec); err != nil {
		return nil, common.Persistencef("update onboarding status", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.Persistencef("commit rejection", err)
	}

	s.notify(ctx, rec, DecisionRejected, reason)
	return rec, nil
}

func (s *onboardingService) GetByID(ctx context.Context, id uuid.UUID) (*models.OnboardingRecord, error) {
	rec, err := s.onboardingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("onboarding %s", id)
		}
		return nil, common.Persistencef("load onboarding", err)
	}
	return rec, nil
}

func (s *onboardingService) List(ctx context.Context, status string, limit, offset int) ([]*models.OnboardingRecord, error) {
	return s.onboardingRepo.List(ctx, status, limit, offset)
}

func (s *onboardingService) notify(ctx context.Context, rec *models.OnboardingRecord, decision string, reason *string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyDecision(ctx, rec, decision, reason); err != nil {
		log.Printf("failed to enqueue %s notification for onboarding %s: %v", decision, rec.ID, err)
	}
}
