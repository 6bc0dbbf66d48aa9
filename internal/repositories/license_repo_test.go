package repositories

import (
	"context"
	"testing"
	"time"

	"harborlink/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type LicenseRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      LicenseRepository
	orgID     uuid.UUID
	licenseID uuid.UUID
	context   context.Context
}

func (suite *LicenseRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewLicenseRepo(mock)
	suite.orgID = uuid.New()
	suite.licenseID = uuid.New()
	suite.context = context.Background()
}

func (suite *LicenseRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestLicenseRepoTestSuite(t *testing.T) {
	suite.Run(t, new(LicenseRepoTestSuite))
}

func (suite *LicenseRepoTestSuite) licenseRows(lic *models.License) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "organization_id", "status", "usage_limits", "current_usage",
		"issued_at", "expires_at", "created_at", "updated_at",
	}).AddRow(
		lic.ID, lic.OrganizationID, lic.Status, lic.UsageLimits, lic.CurrentUsage,
		lic.IssuedAt, lic.ExpiresAt, lic.CreatedAt, lic.UpdatedAt,
	)
}

func (suite *LicenseRepoTestSuite) sampleLicense(status string) *models.License {
	return &models.License{
		ID:             suite.licenseID,
		OrganizationID: suite.orgID,
		Status:         status,
		UsageLimits:    models.UsageCounts{models.ResourceUsers: 25, models.ResourceVessels: 3},
		CurrentUsage:   models.UsageCounts{models.ResourceUsers: 1, models.ResourceVessels: 0},
		IssuedAt:       time.Now().Add(-48 * time.Hour),
	}
}

func (suite *LicenseRepoTestSuite) TestCreate_Success() {
	lic := suite.sampleLicense(models.LicenseActive)

	suite.mock.ExpectExec(`INSERT INTO licenses`).
		WithArgs(lic.ID, lic.OrganizationID, lic.Status, lic.UsageLimits, lic.CurrentUsage,
			lic.IssuedAt, lic.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, lic)
	assert.NoError(suite.T(), err)
}

func (suite *LicenseRepoTestSuite) TestGetBlockingByOrg_ActiveLicense() {
	lic := suite.sampleLicense(models.LicenseActive)

	suite.mock.ExpectQuery(`SELECT (.+) FROM licenses\s+WHERE organization_id = \$1 AND status IN \('active', 'suspended'\)`).
		WithArgs(suite.orgID).
		WillReturnRows(suite.licenseRows(lic))

	got, err := suite.repo.GetBlockingByOrg(suite.context, suite.orgID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), lic.ID, got.ID)
}

func (suite *LicenseRepoTestSuite) TestGetBlockingByOrg_NoneIsNotAnError() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM licenses\s+WHERE organization_id = \$1 AND status IN \('active', 'suspended'\)`).
		WithArgs(suite.orgID).
		WillReturnError(pgx.ErrNoRows)

	got, err := suite.repo.GetBlockingByOrg(suite.context, suite.orgID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), got)
}

func (suite *LicenseRepoTestSuite) TestGetNonRevokedByOrg_FindsExpired() {
	lic := suite.sampleLicense(models.LicenseExpired)

	suite.mock.ExpectQuery(`SELECT (.+) FROM licenses\s+WHERE organization_id = \$1 AND status <> 'revoked'`).
		WithArgs(suite.orgID).
		WillReturnRows(suite.licenseRows(lic))

	got, err := suite.repo.GetNonRevokedByOrg(suite.context, suite.orgID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.LicenseExpired, got.Status)
}

func (suite *LicenseRepoTestSuite) TestGetForUpdateByOrg_LocksActiveRow() {
	lic := suite.sampleLicense(models.LicenseActive)

	suite.mock.ExpectQuery(`SELECT (.+) FROM licenses\s+WHERE organization_id = \$1 AND status = 'active'\s+FOR UPDATE`).
		WithArgs(suite.orgID).
		WillReturnRows(suite.licenseRows(lic))

	got, err := suite.repo.GetForUpdateByOrg(suite.context, suite.orgID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), lic.ID, got.ID)
}

func (suite *LicenseRepoTestSuite) TestUpdateStatus_Success() {
	suite.mock.ExpectExec(`UPDATE licenses SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(models.LicenseSuspended, suite.licenseID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateStatus(suite.context, suite.licenseID, models.LicenseSuspended)
	assert.NoError(suite.T(), err)
}

func (suite *LicenseRepoTestSuite) TestUpdateUsage_Success() {
	usage := models.UsageCounts{models.ResourceUsers: 2, models.ResourceVessels: 1}

	suite.mock.ExpectExec(`UPDATE licenses SET current_usage = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(usage, suite.licenseID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateUsage(suite.context, suite.licenseID, usage)
	assert.NoError(suite.T(), err)
}

func (suite *LicenseRepoTestSuite) TestExpireOverdue_ReportsRowCount() {
	now := time.Now()

	suite.mock.ExpectExec(`UPDATE licenses\s+SET status = 'expired', updated_at = NOW\(\)\s+WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := suite.repo.ExpireOverdue(suite.context, now)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), n)
}

func (suite *LicenseRepoTestSuite) TestList_FiltersByStatus() {
	lic := suite.sampleLicense(models.LicenseActive)

	suite.mock.ExpectQuery(`SELECT (.+) FROM licenses\s+WHERE \(\$1 = '' OR status = \$1\)`).
		WithArgs(models.LicenseActive, 20, 0).
		WillReturnRows(suite.licenseRows(lic))

	lics, err := suite.repo.List(suite.context, models.LicenseActive, 20, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), lics, 1)
}
