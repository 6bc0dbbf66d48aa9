package repositories

import (
	"context"

	"harborlink/internal/models"

	"github.com/google/uuid"
)

type RFQRepository interface {
	Create(ctx context.Context, rfq *models.RFQ) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.RFQ, error)
	Update(ctx context.Context, rfq *models.RFQ) error
	UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status string) error
	List(ctx context.Context, orgID uuid.UUID, filter *models.RFQSearchFilter) ([]*models.RFQ, error)
}

type rfqRepo struct {
	db Database
}

func NewRFQRepo(db Database) RFQRepository {
	return &rfqRepo{db: db}
}

const rfqColumns = `id, organization_id, reference, title, description, vessel_id,
		status, due_date, created_by, created_at, updated_at`

func (r *rfqRepo) Create(ctx context.Context, rfq *models.RFQ) error {
	query := `
		INSERT INTO rfqs (id, organization_id, reference, title, description, vessel_id,
			status, due_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		rfq.ID, rfq.OrganizationID, rfq.Reference, rfq.Title, rfq.Description, rfq.VesselID,
		rfq.Status, rfq.DueDate, rfq.CreatedBy)
	return err
}

func (r *rfqRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.RFQ, error) {
	rfq := &models.RFQ{}
	query := `
		SELECT ` + rfqColumns + `
		FROM rfqs
		WHERE organization_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, orgID, id).Scan(
		&rfq.ID, &rfq.OrganizationID, &rfq.Reference, &rfq.Title, &rfq.Description, &rfq.VesselID,
		&rfq.Status, &rfq.DueDate, &rfq.CreatedBy, &rfq.CreatedAt, &rfq.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rfq, nil
}

func (r *rfqRepo) Update(ctx context.Context, rfq *models.RFQ) error {
	query := `
		UPDATE rfqs
		SET title = $1, description = $2, vessel_id = $3, due_date = $4, updated_at = NOW()
		WHERE organization_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query,
		rfq.Title, rfq.Description, rfq.VesselID, rfq.DueDate, rfq.OrganizationID, rfq.ID)
	return err
}

func (r *rfqRepo) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status string) error {
	query := `UPDATE rfqs SET status = $1, updated_at = NOW() WHERE organization_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, status, orgID, id)
	return err
}

func (r *rfqRepo) List(ctx context.Context, orgID uuid.UUID, filter *models.RFQSearchFilter) ([]*models.RFQ, error) {
	if filter == nil {
		filter = &models.RFQSearchFilter{}
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + rfqColumns + `
		FROM rfqs
		WHERE organization_id = $1
			AND ($2::text IS NULL OR status = $2)
			AND ($3::uuid IS NULL OR vessel_id = $3)
			AND ($4::uuid IS NULL OR created_by = $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6
	`
	rows, err := r.db.Query(ctx, query, orgID, filter.Status, filter.VesselID, filter.CreatedBy, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rfqs []*models.RFQ
	for rows.Next() {
		rfq := &models.RFQ{}
		if err := rows.Scan(
			&rfq.ID, &rfq.OrganizationID, &rfq.Reference, &rfq.Title, &rfq.Description, &rfq.VesselID,
			&rfq.Status, &rfq.DueDate, &rfq.CreatedBy, &rfq.CreatedAt, &rfq.UpdatedAt); err != nil {
			return nil, err
		}
		rfqs = append(rfqs, rfq)
	}
	return rfqs, rows.Err()
}
