package repositories

import (
	"context"

	"harborlink/internal/models"

	"github.com/google/uuid"
)

type VesselRepository interface {
	Create(ctx context.Context, vessel *models.Vessel) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Vessel, error)
	Update(ctx context.Context, vessel *models.Vessel) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Vessel, error)
	CountByOrg(ctx context.Context, orgID uuid.UUID) (int, error)
	WithTx(tx Database) VesselRepository
}

type vesselRepo struct {
	db Database
}

func NewVesselRepo(db Database) VesselRepository {
	return &vesselRepo{db: db}
}

func (r *vesselRepo) WithTx(tx Database) VesselRepository {
	return &vesselRepo{db: tx}
}

func (r *vesselRepo) Create(ctx context.Context, vessel *models.Vessel) error {
	query := `
		INSERT INTO vessels (id, organization_id, name, imo_number, flag, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		vessel.ID, vessel.OrganizationID, vessel.Name, vessel.IMONumber, vessel.Flag, vessel.Status)
	return err
}

func (r *vesselRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Vessel, error) {
	vessel := &models.Vessel{}
	query := `
		SELECT id, organization_id, name, imo_number, flag, status, created_at, updated_at
		FROM vessels
		WHERE organization_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, orgID, id).Scan(
		&vessel.ID, &vessel.OrganizationID, &vessel.Name, &vessel.IMONumber, &vessel.Flag, &vessel.Status, &vessel.CreatedAt, &vessel.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return vessel, nil
}

func (r *vesselRepo) Update(ctx context.Context, vessel *models.Vessel) error {
	query := `
		UPDATE vessels
		SET name = $1, imo_number = $2, flag = $3, status = $4, updated_at = NOW()
		WHERE organization_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query,
		vessel.Name, vessel.IMONumber, vessel.Flag, vessel.Status, vessel.OrganizationID, vessel.ID)
	return err
}

func (r *vesselRepo) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `DELETE FROM vessels WHERE organization_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, orgID, id)
	return err
}

func (r *vesselRepo) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Vessel, error) {
	query := `
		SELECT id, organization_id, name, imo_number, flag, status, created_at, updated_at
		FROM vessels
		WHERE organization_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vessels []*models.Vessel
	for rows.Next() {
		vessel := &models.Vessel{}
		if err := rows.Scan(
			&vessel.ID, &vessel.OrganizationID, &vessel.Name, &vessel.IMONumber, &vessel.Flag, &vessel.Status, &vessel.CreatedAt, &vessel.UpdatedAt); err != nil {
			return nil, err
		}
		vessels = append(vessels, vessel)
	}
	return vessels, rows.Err()
}

func (r *vesselRepo) CountByOrg(ctx context.Context, orgID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM vessels WHERE organization_id = $1`
	err := r.db.QueryRow(ctx, query, orgID).Scan(&count)
	return count, err
}
