package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"harborlink/internal/common"
	"harborlink/internal/models"
	"harborlink/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockInvitationRepository struct {
	mock.Mock
}

func (m *MockInvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) MarkRedeemed(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockInvitationRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvitationRepository) WithTx(tx repositories.Database) repositories.InvitationRepository {
	m.Called(tx)
	return m
}

func (m *MockInvitationRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.Invitation, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invitation), args.Error(1)
}

type MockOrganizationService struct {
	mock.Mock
}

func (m *MockOrganizationService) Create(ctx context.Context, req *CreateOrganizationRequest) (*models.Organization, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationService) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationService) Update(ctx context.Context, req *UpdateOrganizationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockOrganizationService) Remove(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrganizationService) List(ctx context.Context, orgType string, limit, offset int) ([]*models.Organization, error) {
	args := m.Called(ctx, orgType, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Organization), args.Error(1)
}

const testInviteSecret = "invite-test-secret"

type InvitationServiceTestSuite struct {
	suite.Suite
	mockDB         pgxmock.PgxPoolIface
	invitationRepo *MockInvitationRepository
	onboardingRepo *MockOnboardingRepository
	orgSvc         *MockOrganizationService
	svc            *invitationService
	ctx            context.Context
	now            time.Time
}

func (s *InvitationServiceTestSuite) SetupTest() {
	mockDB, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.mockDB = mockDB
	s.invitationRepo = new(MockInvitationRepository)
	s.onboardingRepo = new(MockOnboardingRepository)
	s.orgSvc = new(MockOrganizationService)
	s.ctx = context.Background()
	s.now = time.Now()

	svc := NewInvitationService(s.mockDB, s.invitationRepo, s.onboardingRepo, s.orgSvc, testInviteSecret)
	s.svc = svc.(*invitationService)
	s.svc.now = func() time.Time { return s.now }
}

func (s *InvitationServiceTestSuite) TearDownTest() {
	s.invitationRepo.AssertExpectations(s.T())
	s.onboardingRepo.AssertExpectations(s.T())
	s.orgSvc.AssertExpectations(s.T())
	assert.NoError(s.T(), s.mockDB.ExpectationsWereMet())
	s.mockDB.Close()
}

func TestInvitationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvitationServiceTestSuite))
}

func (s *InvitationServiceTestSuite) signClaims(claims *InvitationClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testInviteSecret))
	s.Require().NoError(err)
	return token
}

func (s *InvitationServiceTestSuite) TestIssue_NewCompanyCreatesOrganization() {
	orgID := uuid.New()
	s.orgSvc.On("Create", s.ctx, mock.MatchedBy(func(req *CreateOrganizationRequest) bool {
		return req.Name == "Meridian Shipping" && req.Type == models.OrgTypeCustomer
	})).Return(&models.Organization{ID: orgID, Name: "Meridian Shipping", Type: models.OrgTypeCustomer}, nil)
	s.invitationRepo.On("Create", s.ctx, mock.AnythingOfType("*models.Invitation")).Return(nil)

	inv, err := s.svc.Issue(s.ctx, &IssueInvitationRequest{
		CompanyName: "Meridian Shipping",
		OrgType:     models.OrgTypeCustomer,
		Email:       "ops@meridian.example",
	})

	s.NoError(err)
	s.Equal(orgID, inv.OrganizationID)
	s.Equal(models.InvitationPending, inv.Status)
	s.Equal(s.now.Add(invitationTTL), inv.ExpiresAt)

	claims := &InvitationClaims{}
	parsed, err := jwt.ParseWithClaims(inv.Token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testInviteSecret), nil
	})
	s.NoError(err)
	s.True(parsed.Valid)
	s.Equal(inv.ID, claims.InvitationID)
	s.Equal(orgID, claims.OrganizationID)
	s.Equal("ops@meridian.example", claims.Email)
}

func (s *InvitationServiceTestSuite) TestIssue_ExistingOrganization() {
	orgID := uuid.New()
	s.orgSvc.On("GetByID", s.ctx, orgID).Return(&models.Organization{ID: orgID, Type: models.OrgTypeVendor}, nil)
	s.invitationRepo.On("Create", s.ctx, mock.AnythingOfType("*models.Invitation")).Return(nil)

	inv, err := s.svc.Issue(s.ctx, &IssueInvitationRequest{
		OrganizationID: &orgID,
		Email:          "chandler@vendor.example",
	})

	s.NoError(err)
	s.Equal(orgID, inv.OrganizationID)
	s.orgSvc.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *InvitationServiceTestSuite) TestIssue_MissingEmail() {
	_, err := s.svc.Issue(s.ctx, &IssueInvitationRequest{
		CompanyName: "Meridian Shipping",
		OrgType:     models.OrgTypeCustomer,
	})
	s.Error(err)
}

func (s *InvitationServiceTestSuite) TestIssue_NewCompanyNeedsValidType() {
	_, err := s.svc.Issue(s.ctx, &IssueInvitationRequest{
		CompanyName: "Meridian Shipping",
		OrgType:     "broker",
		Email:       "ops@meridian.example",
	})
	s.Error(err)
}

func (s *InvitationServiceTestSuite) pendingInvitation(orgID uuid.UUID) (*models.Invitation, string) {
	invID := uuid.New()
	token := s.signClaims(&InvitationClaims{
		InvitationID:   invID,
		OrganizationID: orgID,
		Email:          "ops@meridian.example",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(s.now),
		},
	})
	return &models.Invitation{
		ID:             invID,
		OrganizationID: orgID,
		Email:          "ops@meridian.example",
		Token:          token,
		Status:         models.InvitationPending,
		ExpiresAt:      s.now.Add(time.Hour),
	}, token
}

func (s *InvitationServiceTestSuite) TestRedeem_CreatesPendingRecord() {
	orgID := uuid.New()
	inv, token := s.pendingInvitation(orgID)
	s.invitationRepo.On("GetByID", s.ctx, inv.ID).Return(inv, nil)
	s.mockDB.ExpectBegin()
	s.mockDB.ExpectCommit()
	s.onboardingRepo.On("WithTx", mock.Anything).Return()
	s.invitationRepo.On("WithTx", mock.Anything).Return()
	s.onboardingRepo.On("Create", s.ctx, mock.AnythingOfType("*models.OnboardingRecord")).Return(nil)
	s.invitationRepo.On("MarkRedeemed", s.ctx, inv.ID, s.now).Return(nil)

	rec, err := s.svc.Redeem(s.ctx, token, &SubmitOnboardingRequest{
		CompanyName:      "Meridian Shipping",
		ContactName:      "R. Chandler",
		ContactEmail:     "ops@meridian.example",
		RequestedVessels: 3,
	})

	s.NoError(err)
	s.Equal(orgID, rec.OrganizationID)
	s.Equal(models.OnboardingPending, rec.Status)
	s.Equal(3, rec.RequestedVessels)
}

func (s *InvitationServiceTestSuite) TestRedeem_FullSubmissionIsReviewReady() {
	orgID := uuid.New()
	inv, token := s.pendingInvitation(orgID)
	s.invitationRepo.On("GetByID", s.ctx, inv.ID).Return(inv, nil)
	s.mockDB.ExpectBegin()
	s.mockDB.ExpectCommit()
	s.onboardingRepo.On("WithTx", mock.Anything).Return()
	s.invitationRepo.On("WithTx", mock.Anything).Return()
	s.onboardingRepo.On("Create", s.ctx, mock.AnythingOfType("*models.OnboardingRecord")).Return(nil)
	s.invitationRepo.On("MarkRedeemed", s.ctx, inv.ID, s.now).Return(nil)

	bank := "Harbor National"
	account := "0012-3345"
	taxID := "TX-9981"
	rec, err := s.svc.Redeem(s.ctx, token, &SubmitOnboardingRequest{
		CompanyName:  "Meridian Shipping",
		ContactName:  "R. Chandler",
		ContactEmail: "ops@meridian.example",
		BankName:     &bank,
		BankAccount:  &account,
		TaxID:        &taxID,
	})

	s.NoError(err)
	s.Equal(models.OnboardingCompleted, rec.Status)
}

func (s *InvitationServiceTestSuite) TestRedeem_TamperedToken() {
	_, err := s.svc.Redeem(s.ctx, "not-a-token", &SubmitOnboardingRequest{
		CompanyName:  "Meridian Shipping",
		ContactName:  "R. Chandler",
		ContactEmail: "ops@meridian.example",
	})
	s.ErrorIs(err, common.ErrUnauthorized)
}

func (s *InvitationServiceTestSuite) TestRedeem_AlreadyRedeemed() {
	orgID := uuid.New()
	inv, token := s.pendingInvitation(orgID)
	inv.Status = models.InvitationRedeemed
	s.invitationRepo.On("GetByID", s.ctx, inv.ID).Return(inv, nil)

	_, err := s.svc.Redeem(s.ctx, token, &SubmitOnboardingRequest{
		CompanyName:  "Meridian Shipping",
		ContactName:  "R. Chandler",
		ContactEmail: "ops@meridian.example",
	})
	s.ErrorIs(err, common.ErrInvalidTransition)
	s.onboardingRepo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *InvitationServiceTestSuite) TestRedeem_ExpiredInvitationRow() {
	orgID := uuid.New()
	inv, token := s.pendingInvitation(orgID)
	inv.ExpiresAt = s.now.Add(-time.Minute)
	s.invitationRepo.On("GetByID", s.ctx, inv.ID).Return(inv, nil)

	_, err := s.svc.Redeem(s.ctx, token, &SubmitOnboardingRequest{
		CompanyName:  "Meridian Shipping",
		ContactName:  "R. Chandler",
		ContactEmail: "ops@meridian.example",
	})
	s.ErrorIs(err, common.ErrInvalidTransition)
}

func (s *InvitationServiceTestSuite) TestRedeem_MarkRedeemedFailureRollsBackRecord() {
	orgID := uuid.New()
	inv, token := s.pendingInvitation(orgID)
	s.invitationRepo.On("GetByID", s.ctx, inv.ID).Return(inv, nil)
	s.mockDB.ExpectBegin()
	s.mockDB.ExpectRollback()
	s.onboardingRepo.On("WithTx", mock.Anything).Return()
	s.invitationRepo.On("WithTx", mock.Anything).Return()
	s.onboardingRepo.On("Create", s.ctx, mock.AnythingOfType("*models.OnboardingRecord")).Return(nil)
	s.invitationRepo.On("MarkRedeemed", s.ctx, inv.ID, s.now).Return(errors.New("connection reset"))

	_, err := s.svc.Redeem(s.ctx, token, &SubmitOnboardingRequest{
		CompanyName:  "Meridian Shipping",
		ContactName:  "R. Chandler",
		ContactEmail: "ops@meridian.example",
	})
	s.ErrorIs(err, common.ErrPersistence)
}

func (s *InvitationServiceTestSuite) TestRedeem_MissingContactFields() {
	orgID := uuid.New()
	inv, token := s.pendingInvitation(orgID)
	s.invitationRepo.On("GetByID", s.ctx, inv.ID).Return(inv, nil)

	_, err := s.svc.Redeem(s.ctx, token, &SubmitOnboardingRequest{
		CompanyName: "Meridian Shipping",
	})
	s.Error(err)
	s.onboardingRepo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func TestInvitationList_AppliesPaginationDefaults(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockDB.Close()
	repo := new(MockInvitationRepository)
	svc := NewInvitationService(mockDB, repo, new(MockOnboardingRepository), new(MockOrganizationService), testInviteSecret)
	repo.On("List", mock.Anything, models.InvitationPending, 50, 0).Return([]*models.Invitation{}, nil)

	_, err = svc.List(context.Background(), models.InvitationPending, 0, 0)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
