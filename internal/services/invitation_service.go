package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"harborlink/internal/common"
	"harborlink/internal/models"
	"harborlink/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const invitationTTL = 14 * 24 * time.Hour

// InvitationClaims is the signed payload of an onboarding invite token.
type InvitationClaims struct {
	InvitationID   uuid.UUID `json:"inv"`
	OrganizationID uuid.UUID `json:"org"`
	Email          string    `json:"email"`
	jwt.RegisteredClaims
}

// InvitationService issues onboarding invitations and redeems their
// tokens into OnboardingRecords. Issuing an invitation for a brand-new
// company creates the organization implicitly.
type InvitationService interface {
	Issue(ctx context.Context, req *IssueInvitationRequest) (*models.Invitation, error)
	// Redeem verifies the token and creates the onboarding submission.
	Redeem(ctx context.Context, token string, req *SubmitOnboardingRequest) (*models.OnboardingRecord, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.Invitation, error)
}

type IssueInvitationRequest struct {
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	CompanyName    string     `json:"company_name"`
	OrgType        string     `json:"org_type"`
	Email          string     `json:"email" validate:"required"`
}

type SubmitOnboardingRequest struct {
	CompanyName      string  `json:"company_name" validate:"required"`
	ContactName      string  `json:"contact_name" validate:"required"`
	ContactEmail     string  `json:"contact_email" validate:"required"`
	BankName         *string `json:"bank_name,omitempty"`
	BankAccount      *string `json:"bank_account,omitempty"`
	TaxID            *string `json:"tax_id,omitempty"`
	RequestedVessels int     `json:"requested_vessels"`
}

type invitationService struct {
	db             repositories.TxDatabase
	invitationRepo repositories.InvitationRepository
	onboardingRepo repositories.OnboardingRepository
	orgSvc         OrganizationService
	jwtSecret      []byte
	now            func() time.Time
}

func NewInvitationService(
	db repositories.TxDatabase,
	invitationRepo repositories.InvitationRepository,
	onboardingRepo repositories.OnboardingRepository,
	orgSvc OrganizationService,
	jwtSecret string,
) InvitationService {
	return &invitationService{
		db:             db,
		invitationRepo: invitationRepo,
		onboardingRepo: onboardingRepo,
		orgSvc:         orgSvc,
		jwtSecret:      []byte(jwtSecret),
		now:            time.Now,
	}
}

func (s *invitationService) Issue(ctx context.Context, req *IssueInvitationRequest) (*models.Invitation, error) {
	if strings.TrimSpace(req.Email) == "" {
		return nil, errors.New("email is required")
	}

	orgID := uuid.Nil
	if req.OrganizationID != nil {
		org, err := s.orgSvc.GetByID(ctx, *req.OrganizationID)
		if err != nil {
			return nil, err
		}
		orgID = org.ID
	} else {
		if req.CompanyName == "" || !models.ValidOrgType(req.OrgType) {
			return nil, errors.New("company_name and a valid org_type are required for a new organization")
		}
		org, err := s.orgSvc.Create(ctx, &CreateOrganizationRequest{
			Name: req.CompanyName,
			Type: req.OrgType,
		})
		if err != nil {
			return nil, err
		}
		orgID = org.ID
	}

	invID := uuid.New()
	expiresAt := s.now().Add(invitationTTL)
	claims := &InvitationClaims{
		InvitationID:   invID,
		OrganizationID: orgID,
		Email:          req.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	inv := &models.Invitation{
		ID:             invID,
		OrganizationID: orgID,
		Email:          req.Email,
		Token:          token,
		Status:         models.InvitationPending,
		ExpiresAt:      expiresAt,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, common.Persistencef("create invitation", err)
	}
	return inv, nil
}

func (s *invitationService) Redeem(ctx context.Context, token string, req *SubmitOnboardingRequest) (*models.OnboardingRecord, error) {
	claims := &InvitationClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, common.Unauthorizedf("invalid invitation token")
	}

	inv, err := s.invitationRepo.GetByID(ctx, claims.InvitationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("invitation %s", claims.InvitationID)
		}
		return nil, common.Persistencef("load invitation", err)
	}
	if inv.Status != models.InvitationPending {
		return nil, common.InvalidTransitionf("invitation %s is %s", inv.ID, inv.Status)
	}
	if s.now().After(inv.ExpiresAt) {
		return nil, common.InvalidTransitionf("invitation %s expired at %s", inv.ID, inv.ExpiresAt)
	}

	if err := common.ValidateRequiredString(req.CompanyName, "company_name"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.ContactName, "contact_name"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.ContactEmail, "contact_email"); err != nil {
		return nil, err
	}

	// Banking and tax details are optional at submission time; a record
	// carrying all sections is immediately ready for review.
	status := models.OnboardingPending
	if req.BankName != nil && req.BankAccount != nil && req.TaxID != nil {
		status = models.OnboardingCompleted
	}

	rec := &models.OnboardingRecord{
		ID:               uuid.New(),
		OrganizationID:   inv.OrganizationID,
		CompanyName:      req.CompanyName,
		ContactName:      req.ContactName,
		ContactEmail:     req.ContactEmail,
		BankName:         req.BankName,
		BankAccount:      req.BankAccount,
		TaxID:            req.TaxID,
		RequestedVessels: req.RequestedVessels,
		Status:           status,
	}
	// Record insert and redemption commit together; a retry after a
	// failed redemption must not find a half-redeemed invitation.
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.Persistencef("begin redemption", err)
	}
	defer tx.Rollback(ctx)

	if err := s.onboardingRepo.WithTx(tx).Create(ctx, rec); err != nil {
		return nil, common.Persistencef("create onboarding record", err)
	}
	if err := s.invitationRepo.WithTx(tx).MarkRedeemed(ctx, inv.ID, s.now()); err != nil {
		return nil, common.Persistencef("mark invitation redeemed", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.Persistencef("commit redemption", err)
	}
	return rec, nil
}

func (s *invitationService) List(ctx context.Context, status string, limit, offset int) ([]*models.Invitation, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.invitationRepo.List(ctx, status, limit, offset)
}
