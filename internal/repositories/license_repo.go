package repositories

import (
	"context"
	"errors"
	"time"

	"harborlink/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LicenseRepository interface {
	Create(ctx context.Context, lic *models.License) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.License, error)
	// GetBlockingByOrg returns the active or suspended license for the
	// organization, nil when none exists. At most one can exist.
	GetBlockingByOrg(ctx context.Context, orgID uuid.UUID) (*models.License, error)
	// GetNonRevokedByOrg also matches expired licenses, used on
	// idempotent approval replay to recover the originally issued id.
	GetNonRevokedByOrg(ctx context.Context, orgID uuid.UUID) (*models.License, error)
	// GetForUpdateByOrg locks the active license row for a usage
	// counter increment.
	GetForUpdateByOrg(ctx context.Context, orgID uuid.UUID) (*models.License, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateUsage(ctx context.Context, id uuid.UUID, usage models.UsageCounts) error
	CountByOrg(ctx context.Context, orgID uuid.UUID) (int, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.License, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	WithTx(tx Database) LicenseRepository
}

type licenseRepo struct {
	db Database
}

func NewLicenseRepo(db Database) LicenseRepository {
	return &licenseRepo{db: db}
}

func (r *licenseRepo) WithTx(tx Database) LicenseRepository {
	return &licenseRepo{db: tx}
}

const licenseColumns = `id, organization_id, status, usage_limits, current_usage,
		issued_at, expires_at, created_at, updated_at`

func (r *licenseRepo) Create(ctx context.Context, lic *models.License) error {
	query := `
		INSERT INTO licenses (id, organization_id, status, usage_limits, current_usage,
			issued_at, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		lic.ID, lic.OrganizationID, lic.Status, lic.UsageLimits, lic.CurrentUsage,
		lic.IssuedAt, lic.ExpiresAt)
	return err
}

func (r *licenseRepo) scanOne(row pgx.Row) (*models.License, error) {
	lic := &models.License{}
	err := row.Scan(
		&lic.ID, &lic.OrganizationID, &lic.Status, &lic.UsageLimits, &lic.CurrentUsage,
		&lic.IssuedAt, &lic.ExpiresAt, &lic.CreatedAt, &lic.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return lic, nil
}

func (r *licenseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	query := `
		SELECT ` + licenseColumns + `
		FROM licenses
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *licenseRepo) GetBlockingByOrg(ctx context.Context, orgID uuid.UUID) (*models.License, error) {
	query := `
		SELECT ` + licenseColumns + `
		FROM licenses
		WHERE organization_id = $1 AND status IN ('active', 'suspended')
	`
	lic, err := r.scanOne(r.db.QueryRow(ctx, query, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return lic, err
}

func (r *licenseRepo) GetNonRevokedByOrg(ctx context.Context, orgID uuid.UUID) (*models.License, error) {
	query := `
		SELECT ` + licenseColumns + `
		FROM licenses
		WHERE organization_id = $1 AND status <> 'revoked'
		ORDER BY issued_at DESC
		LIMIT 1
	`
	lic, err := r.scanOne(r.db.QueryRow(ctx, query, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return lic, err
}

func (r *licenseRepo) GetForUpdateByOrg(ctx context.Context, orgID uuid.UUID) (*models.License, error) {
	query := `
		SELECT ` + licenseColumns + `
		FROM licenses
		WHERE organization_id = $1 AND status = 'active'
		FOR UPDATE
	`
	return r.scanOne(r.db.QueryRow(ctx, query, orgID))
}

func (r *licenseRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE licenses SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}

func (r *licenseRepo) UpdateUsage(ctx context.Context, id uuid.UUID, usage models.UsageCounts) error {
	query := `UPDATE licenses SET current_usage = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, usage, id)
	return err
}

func (r *licenseRepo) CountByOrg(ctx context.Context, orgID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM licenses WHERE organization_id = $1`
	err := r.db.QueryRow(ctx, query, orgID).Scan(&count)
	return count, err
}

func (r *licenseRepo) List(ctx context.Context, status string, limit, offset int) ([]*models.License, error) {
	query := `
		SELECT ` + licenseColumns + `
		FROM licenses
		WHERE ($1 = '' OR status = $1)
		ORDER BY issued_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lics []*models.License
	for rows.Next() {
		lic := &models.License{}
		if err := rows.Scan(
			&lic.ID, &lic.OrganizationID, &lic.Status, &lic.UsageLimits, &lic.CurrentUsage,
			&lic.IssuedAt, &lic.ExpiresAt, &lic.CreatedAt, &lic.UpdatedAt); err != nil {
			return nil, err
		}
		lics = append(lics, lic)
	}
	return lics, rows.Err()
}

// ExpireOverdue flips active licenses past their expiry to expired and
// returns how many rows changed. Run by the background sweeper.
func (r *licenseRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE licenses
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= $1
	`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
