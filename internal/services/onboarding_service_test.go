package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"harborlink/internal/authz"
	"harborlink/internal/common"
	"harborlink/internal/models"
	"harborlink/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockOnboardingRepository struct {
	mock.Mock
}

func (m *MockOnboardingRepository) Create(ctx context.Context, rec *models.OnboardingRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockOnboardingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OnboardingRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnboardingRecord), args.Error(1)
}

func (m *MockOnboardingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.OnboardingRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnboardingRecord), args.Error(1)
}

func (m *MockOnboardingRepository) GetByOrganization(ctx context.Context, orgID uuid.UUID) (*models.OnboardingRecord, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnboardingRecord), args.Error(1)
}

func (m *MockOnboardingRepository) UpdateReview(ctx context.Context, rec *models.OnboardingRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockOnboardingRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.OnboardingRecord, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]*models.OnboardingRecord), args.Error(1)
}

func (m *MockOnboardingRepository) WithTx(tx repositories.Database) repositories.OnboardingRepository {
	m.Called(tx)
	return m
}

type MockLicenseRepository struct {
	mock.Mock
}

func (m *MockLicenseRepository) Create(ctx context.Context, lic *models.License) error {
	args := m.Called(ctx, lic)
	return args.Error(0)
}

func (m *MockLicenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseRepository) GetBlockingByOrg(ctx context.Context, orgID uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseRepository) GetNonRevokedByOrg(ctx context.Context, orgID uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseRepository) GetForUpdateByOrg(ctx context.Context, orgID uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLicenseRepository) UpdateUsage(ctx context.Context, id uuid.UUID, usage models.UsageCounts) error {
	args := m.Called(ctx, id, usage)
	return args.Error(0)
}

func (m *MockLicenseRepository) CountByOrg(ctx context.Context, orgID uuid.UUID) (int, error) {
	args := m.Called(ctx, orgID)
	return args.Int(0), args.Error(1)
}

func (m *MockLicenseRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.License, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]*models.License), args.Error(1)
}

func (m *MockLicenseRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLicenseRepository) WithTx(tx repositories.Database) repositories.LicenseRepository {
	m.Called(tx)
	return m
}

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrganizationRepository) List(ctx context.Context, orgType string, limit, offset int) ([]*models.Organization, error) {
	args := m.Called(ctx, orgType, limit, offset)
	return args.Get(0).([]*models.Organization), args.Error(1)
}

type MockRBACService struct {
	mock.Mock
}

func (m *MockRBACService) EffectiveGrants(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockRBACService) UserHasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error) {
	args := m.Called(ctx, userID, permission)
	return args.Bool(0), args.Error(1)
}

func (m *MockRBACService) GetUserPermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]string), args.Error(1)
}

type MockDecisionNotifier struct {
	mock.Mock
}

func (m *MockDecisionNotifier) NotifyDecision(ctx context.Context, rec *models.OnboardingRecord, decision string, reason *string) error {
	args := m.Called(ctx, rec, decision, reason)
	return args.Error(0)
}

type OnboardingServiceTestSuite struct {
	suite.Suite
	mockDB         pgxmock.PgxPoolIface
	mockOnboarding *MockOnboardingRepository
	mockLicenses   *MockLicenseRepository
	mockOrgs       *MockOrganizationRepository
	mockRBAC       *MockRBACService
	mockNotifier   *MockDecisionNotifier
	service        OnboardingService

	reviewerID uuid.UUID
	orgID      uuid.UUID
}

func (suite *OnboardingServiceTestSuite) SetupTest() {
	mockDB, err := pgxmock.NewPool()
	suite.Require().NoError(err)
	suite.mockDB = mockDB
	suite.mockOnboarding = &MockOnboardingRepository{}
	suite.mockLicenses = &MockLicenseRepository{}
	suite.mockOrgs = &MockOrganizationRepository{}
	suite.mockRBAC = &MockRBACService{}
	suite.mockNotifier = &MockDecisionNotifier{}
	suite.service = NewOnboardingService(
		suite.mockDB,
		suite.mockOnboarding,
		suite.mockLicenses,
		suite.mockOrgs,
		suite.mockRBAC,
		suite.mockNotifier,
	)

	suite.reviewerID = uuid.New()
	suite.orgID = uuid.New()

	suite.mockOnboarding.Test(suite.T())
	suite.mockLicenses.Test(suite.T())
	suite.mockOrgs.Test(suite.T())
	suite.mockRBAC.Test(suite.T())
	suite.mockNotifier.Test(suite.T())
}

func (suite *OnboardingServiceTestSuite) TearDownTest() {
	suite.mockOnboarding.AssertExpectations(suite.T())
	suite.mockLicenses.AssertExpectations(suite.T())
	suite.mockOrgs.AssertExpectations(suite.T())
	suite.mockRBAC.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
	assert.NoError(suite.T(), suite.mockDB.ExpectationsWereMet())
	suite.mockDB.Close()
}

func TestOnboardingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OnboardingServiceTestSuite))
}

func (suite *OnboardingServiceTestSuite) issuerGrants() map[string]bool {
	return map[string]bool{
		authz.PermLicensesIssue:      true,
		authz.PermOnboardingReview:   true,
		authz.PermCustomerOrgsManage: true,
	}
}

func (suite *OnboardingServiceTestSuite) pendingRecord() *models.OnboardingRecord {
	return &models.OnboardingRecord{
		ID:               uuid.New(),
		OrganizationID:   suite.orgID,
		CompanyName:      "Meridian Shipping",
		ContactName:      "A. Navarro",
		ContactEmail:     "ops@meridian.example",
		RequestedVessels: 4,
		Status:           models.OnboardingCompleted,
		SubmittedAt:      time.Now().Add(-24 * time.Hour),
	}
}

func (suite *OnboardingServiceTestSuite) customerOrg() *models.Organization {
	return &models.Organization{
		ID:     suite.orgID,
		Name:   "Meridian Shipping",
		Type:   models.OrgTypeCustomer,
		Active: true,
	}
}

func (suite *OnboardingServiceTestSuite) TestApprove_Success() {
	ctx := context.Background()
	rec := suite.pendingRecord()

	suite.mockRBAC.On("EffectiveGrants", ctx, suite.reviewerID).Return(suite.issuerGrants(), nil)
	suite.mockDB.ExpectBegin()
	suite.mockDB.ExpectCommit()
	suite.mockOnboarding.On("WithTx", mock.Anything).Return()
	suite.mockLicenses.On("WithTx", mock.Anything).Return()
	suite.mockOnboarding.On("GetForUpdate", ctx, rec.ID).Return(rec, nil)
	suite.mockOrgs.On("GetByID", ctx, suite.orgID).Return(suite.customerOrg(), nil)
	suite.mockLicenses.On("GetBlockingByOrg", ctx, suite.orgID).Return(nil, nil)
	suite.mockLicenses.On("Create", ctx, mock.AnythingOfType("*models.License")).Return(nil).Run(func(args mock.Arguments) {
		lic := args.Get(1).(*models.License)
		assert.Equal(suite.T(), suite.orgID, lic.OrganizationID)
		assert.Equal(suite.T(), models.LicenseActive, lic.Status)
		assert.Equal(suite.T(), 4, lic.UsageLimits[models.ResourceVessels])
	})
	suite.mockOnboarding.On("UpdateReview", ctx, rec).Return(nil)
	suite.mockNotifier.On("NotifyDecision", ctx, rec, DecisionApproved, (*string)(nil)).Return(nil)

	result, err := suite.service.Approve(ctx, rec.ID, suite.reviewerID)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), result)
	assert.Equal(suite.T(), models.OnboardingApproved, result.Onboarding.Status)
	assert.Equal(suite.T(), &suite.reviewerID, result.Onboarding.ReviewerID)
	assert.NotNil(suite.T(), result.Onboarding.ReviewedAt)
	assert.Nil(suite.T(), result.Onboarding.RejectionReason)
	assert.NotEqual(suite.T(), uuid.Nil, result.LicenseID)
}

func (suite *OnboardingServiceTestSuite) TestApprove_ReplayReturnsOriginalLicense() {
	ctx := context.Background()
	rec := suite.pendingRecord()
	rec.Status = models.OnboardingApproved
	existing := &models.License{ID: uuid.New(), OrganizationID: suite.orgID, Status: models.LicenseActive}

	suite.mockRBAC.On("EffectiveGrants", ctx, suite.reviewerID).Return(suite.issuerGrants(), nil)
	suite.mockDB.ExpectBegin()
	suite.mockDB.ExpectRollback()
	suite.mockOnboarding.On("WithTx", mock.Anything).Return()
	suite.mockLicenses.On("WithTx", mock.Anything).Return()
	suite.mockOnboarding.On("GetForUpdate", ctx, rec.ID).Return(rec, nil)
	suite.mockOrgs.On("GetByID", ctx, suite.orgID).Return(suite.customerOrg(), nil)
	suite.mockLicenses.On("GetNonRevokedByOrg", ctx, suite.orgID).Return(existing, nil)

	result, err := suite.service.Approve(ctx, rec.ID, suite.reviewerID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), existing.ID, result.LicenseID)
	// No license insert, no status write.
	suite.mockLicenses.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	suite.mockOnboarding.AssertNotCalled(suite.T(), "UpdateReview", mock.Anything, mock.Anything)
}

func (suite *OnboardingServiceTestSuite) TestApprove_RejectedRecordIsTerminal() {
	ctx := context.Background()
	rec := suite.pendingRecord()
	rec.Status = models.OnboardingRejected

	suite.mockRBAC.On("EffectiveGrants", ctx, suite.reviewerID).Return(suite.issuerGrants(), nil)
	suite.mockDB.ExpectBegin()
	suite.mockDB.ExpectRollback()
	suite.mockOnboarding.On("WithTx", mock.Anything).Return()
	suite.mockLicenses.On("WithTx", mock.Anything).Return()
	suite.mockOnboarding.On("GetForUpdate", ctx, rec.ID).Return(rec, nil)
	suite.mockOrgs.On("GetByID", ctx, suite.orgID).Return(suite.customerOrg(), nil)

	result, err := suite.service.Approve(ctx, rec.ID, suite.reviewerID)
	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidTransition)
}

func (suite *OnboardingServiceTestSuite) TestApprove_SuspendedLicenseBlocks() {
	ctx := context.Background()
	rec := suite.pendingRecord()
	suspended := &models.License{ID: uuid.New(), OrganizationID: suite.orgID, Status: models.LicenseSuspended}

	suite.mockRBAC.On("EffectiveGrants", ctx, suite.reviewerID).Return(suite.issuerGrants(), nil)
	suite.mockDB.ExpectBegin()
	suite.mockDB.ExpectRollback()
	suite.mockOnboarding.On("WithTx", mock.Anything).Return()
	suite.mockLicenses.On("WithTx", mock.Anything).Return()
	suite.mockOnboarding.On("GetForUpdate", ctx, rec.ID).Return(rec, nil)
	suite.mockOrgs.On("GetByID", ctx, suite.orgID).Return(suite.customerOrg(), nil)
	suite.mockLicenses.On("GetBlockingByOrg", ctx, suite.orgID).Return(suspended, nil)

	result, err := suite.service.Approve(ctx, rec.ID, suite.reviewerID)
	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidTransition)
	suite.mockLicenses.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *OnboardingServiceTestSuite) TestApprove_MissingIssueGrant() {
	ctx := context.Background()
	rec := suite.pendingRecord()
	grants := map[string]bool{authz.PermOnboardingReview: true, authz.PermCustomerOrgsManage: true}

	suite.mockRBAC.On("EffectiveGrants", ctx, suite.reviewerID).Return(grants, nil)
	suite.mockDB.ExpectBegin()
	suite.mockDB.ExpectRollback()
	suite.mockOnboarding.On("WithTx", mock.Anything).Return()
	suite.mockLicenses.On("WithTx", mock.Anything).Return()
	suite.mockOnboarding.On("GetForUpdate", ctx, rec.ID).Return(rec, nil)
	suite.mockOrgs.On("GetByID", ctx, suite.orgID).Return(suite.customerOrg(), nil)

	result, err := suite.service.Approve(ctx, rec.ID, suite.reviewerID)
	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, common.ErrUnauthorized)
}

func (suite *OnboardingServiceTestSuite) TestApprove_WrongOrgTypeGrant() {
	ctx := context.Background()
	rec := suite.pendingRecord()
	// Issuer for vendors only reviewing a customer organization.
	grants := map[string]bool{authz.PermLicensesIssue: true, authz.PermVendorOrgsManage: true}

	suite.mockRBAC.On("EffectiveGrants", ctx, suite.reviewerID).Return(grants, nil)
	suite.mockDB.ExpectBegin()
	suite.mockDB.ExpectRollback()
	suite.mockOnboarding.On("WithTx", mock.Anything).Return()
	suite.mockLicenses.On("WithTx", mock.Anything).Return()
	suite.mockOnboarding.On("GetForUpdate", ctx, rec.ID).Return(rec, nil)
	suite.mockOrgs.On("GetByID", ctx, suite.orgID).Return(suite.customerOrg(), nil)

	result, err := suite.service.Approve(ctx, rec.ID, suite.reviewerID)
	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, common.ErrUnauthorized)
}

func (suite *OnboardingServiceTestSuite) TestApprove_LicenseCreateFailureRollsBack() {
	ctx := context.Background()
	rec := suite.pendingRecord()

	suite.mockRBAC.On("EffectiveGrants", ctx, suite.reviewerID).Return(suite.issuerGrants(), nil)
	suite.mockDB.ExpectBegin()
	suite.mockDB.ExpectRollback()
	suite.mockOnboarding.On("WithTx", mock.Anything).Return()
	suite.mockLicenses.On("WithTx", mock.Anything).Return()
	suite.mockOnboarding.On("GetForUpdate", ctx, rec.ID).Return(rec, nil)
	suite.mockOrgs.On("GetByID", ctx, suite.orgID).Return(suite.customerOrg(), nil)
	suite.mockLicenses.On("GetBlockingByOrg", ctx, suite.orgID).Return(nil, nil)
	suite.mockLicenses.On("Create", ctx, mock.AnythingOfType("*models.License")).Return(errors.New("insert failed"))

	result, err := suite.service.Approve(ctx, rec.ID, suite.reviewerID)
	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, common.ErrPersistence)
	suite.mockOnboarding.AssertNotCalled(suite.T(), "UpdateReview", mock.Anything, mock.Anything)
}

func (suite *OnboardingServiceTestSuite) TestApprove_NotFound() {
	ctx := context.Background()
	missingID := uuid.New()

	suite.mockRBAC.On("EffectiveGrants", ctx, suite.reviewerID).Return(suite.issuerGrants(), nil)
	suite.mockDB.ExpectBegin()
	suite.mockDB.ExpectRollback()
	suite.mockOnboarding.On("WithTx", mock.Anything).Return()
	suite.mockLicenses.On("WithTx", mock.Anything).Return()
	suite.mockOnboarding.On("GetForUpdate", ctx, missingID).Return(nil, pgx.ErrNoRows)

	result, err := suite.service.Approve(ctx, missingID, suite.reviewerID)
	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *OnboardingServiceTestSuite) TestReject_Success() {
	ctx := context.Background()
	rec := suite.pendingRecord()
	reason := "incomplete bank details"

	suite.mockRBAC.On("EffectiveGrants", ctx, suite.reviewerID).Return(suite.issuerGrants(), nil)
	suite.mockDB.ExpectBegin()
	suite.mockDB.ExpectCommit()
	suite.mockOnboarding.On("WithTx", mock.Anything).Return()
	suite.mockOnboarding.On("GetForUpdate", ctx, rec.ID).Return(rec, nil)
	suite.mockOrgs.On("GetByID", ctx, suite.orgID).Return(suite.customerOrg(), nil)
	suite.mockOnboarding.On("UpdateReview", ctx, rec).Return(nil)
	suite.mockNotifier.On("NotifyDecision", ctx, rec, DecisionRejected, &reason).Return(nil)

	updated, err := suite.service.Reject(ctx, rec.ID, suite.reviewerID, &reason)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OnboardingRejected, updated.Status)
	assert.Equal(suite.T(), &reason, updated.RejectionReason)
	suite.mockLicenses.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *OnboardingServiceTestSuite) TestReject_ApprovedRecordIsTerminal() {
	ctx := context.Background()
	rec := suite.pendingRecord()
	rec.Status = models.OnboardingApproved
	reason := "changed our minds"

	suite.mockRBAC.On("EffectiveGrants", ctx, suite.reviewerID).Return(suite.issuerGrants(), nil)
	suite.mockDB.ExpectBegin()
	suite.mockDB.ExpectRollback()
	suite.mockOnboarding.On("WithTx", mock.Anything).Return()
	suite.mockOnboarding.On("GetForUpdate", ctx, rec.ID).Return(rec, nil)
	suite.mockOrgs.On("GetByID", ctx, suite.orgID).Return(suite.customerOrg(), nil)

	updated, err := suite.service.Reject(ctx, rec.ID, suite.reviewerID, &reason)
	assert.Nil(suite.T(), updated)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidTransition)
	suite.mockOnboarding.AssertNotCalled(suite.T(), "UpdateReview", mock.Anything, mock.Anything)
}

func (suite *OnboardingServiceTestSuite) TestReject_NotifierFailureDoesNotFailReview() {
	ctx := context.Background()
	rec := suite.pendingRecord()

	suite.mockRBAC.On("EffectiveGrants", ctx, suite.reviewerID).Return(suite.issuerGrants(), nil)
	suite.mockDB.ExpectBegin()
	suite.mockDB.ExpectCommit()
	suite.mockOnboarding.On("WithTx", mock.Anything).Return()
	suite.mockOnboarding.On("GetForUpdate", ctx, rec.ID).Return(rec, nil)
	suite.mockOrgs.On("GetByID", ctx, suite.orgID).Return(suite.customerOrg(), nil)
	suite.mockOnboarding.On("UpdateReview", ctx, rec).Return(nil)
	suite.mockNotifier.On("NotifyDecision", ctx, rec, DecisionRejected, (*string)(nil)).Return(errors.New("queue down"))

	updated, err := suite.service.Reject(ctx, rec.ID, suite.reviewerID, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OnboardingRejected, updated.Status)
}
