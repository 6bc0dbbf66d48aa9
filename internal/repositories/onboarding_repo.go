package repositories

import (
	"context"

	"harborlink/internal/models"

	"github.com/google/uuid"
)

type OnboardingRepository interface {
	Create(ctx context.Context, rec *models.OnboardingRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.OnboardingRecord, error)
	// GetForUpdate locks the row for the duration of the surrounding
	// transaction so concurrent reviews of the same record serialize.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.OnboardingRecord, error)
	GetByOrganization(ctx context.Context, orgID uuid.UUID) (*models.OnboardingRecord, error)
	UpdateReview(ctx context.Context, rec *models.OnboardingRecord) error
	List(ctx context.Context, status string, limit, offset int) ([]*models.OnboardingRecord, error)
	WithTx(tx Database) OnboardingRepository
}

type onboardingRepo struct {
	db Database
}

func NewOnboardingRepo(db Database) OnboardingRepository {
	return &onboardingRepo{db: db}
}

func (r *onboardingRepo) WithTx(tx Database) OnboardingRepository {
	return &onboardingRepo{db: tx}
}

const onboardingColumns = `id, organization_id, company_name, contact_name, contact_email,
		bank_name, bank_account, tax_id, requested_vessels, status,
		rejection_reason, reviewer_id, reviewed_at, submitted_at, updated_at`

func (r *onboardingRepo) Create(ctx context.Context, rec *models.OnboardingRecord) error {
	query := `
		INSERT INTO onboarding_records (id, organization_id, company_name, contact_name, contact_email,
			bank_name, bank_account, tax_id, requested_vessels, status, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.OrganizationID, rec.CompanyName, rec.ContactName, rec.ContactEmail,
		rec.BankName, rec.BankAccount, rec.TaxID, rec.RequestedVessels, rec.Status)
	return err
}

func (r *onboardingRepo) scanOne(row interface{ Scan(dest ...interface{}) error }) (*models.OnboardingRecord, error) {
	rec := &models.OnboardingRecord{}
	err := row.Scan(
		&rec.ID, &rec.OrganizationID, &rec.CompanyName, &rec.ContactName, &rec.ContactEmail,
		&rec.BankName, &rec.BankAccount, &rec.TaxID, &rec.RequestedVessels, &rec.Status,
		&rec.RejectionReason, &rec.ReviewerID, &rec.ReviewedAt, &rec.SubmittedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *onboardingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.OnboardingRecord, error) {
	query := `
		SELECT ` + onboardingColumns + `
		FROM onboarding_records
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *onboardingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.OnboardingRecord, error) {
	query := `
		SELECT ` + onboardingColumns + `
		FROM onboarding_records
		WHERE id = $1
		FOR UPDATE
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *onboardingRepo) GetByOrganization(ctx context.Context, orgID uuid.UUID) (*models.OnboardingRecord, error) {
	query := `
		SELECT ` + onboardingColumns + `
		FROM onboarding_records
		WHERE organization_id = $1
		ORDER BY submitted_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, orgID))
}

// UpdateReview persists the review outcome. Records are audit history;
// nothing else about them is ever mutated and they are never deleted.
func (r *onboardingRepo) UpdateReview(ctx context.Context, rec *models.OnboardingRecord) error {
	query := `
		UPDATE onboarding_records
		SET status = $1, rejection_reason = $2, reviewer_id = $3, reviewed_at = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, rec.Status, rec.RejectionReason, rec.ReviewerID, rec.ReviewedAt, rec.ID)
	return err
}

func (r *onboardingRepo) List(ctx context.Context, status string, limit, offset int) ([]*models.OnboardingRecord, error) {
	query := `
		SELECT ` + onboardingColumns + `
		FROM onboarding_records
		WHERE ($1 = '' OR status = $1)
		ORDER BY submitted_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.OnboardingRecord
	for rows.Next() {
		rec := &models.OnboardingRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.OrganizationID, &rec.CompanyName, &rec.ContactName, &rec.ContactEmail,
			&rec.BankName, &rec.BankAccount, &rec.TaxID, &rec.RequestedVessels, &rec.Status,
			&rec.RejectionReason, &rec.ReviewerID, &rec.ReviewedAt, &rec.SubmittedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
