package repositories

import (
	"context"

	"harborlink/internal/models"

	"github.com/google/uuid"
)

type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	GetByName(ctx context.Context, portalType, name string) (*models.Role, error)
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, portalType string, limit, offset int) ([]*models.Role, error)
}

type roleRepo struct {
	db Database
}

func NewRoleRepo(db Database) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) Create(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO roles (id, portal_type, name, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (portal_type, name) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, role.ID, role.PortalType, role.Name, role.Permissions)
	return err
}

func (r *roleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	role := &models.Role{}
	query := `
		SELECT id, portal_type, name, permissions, created_at, updated_at
		FROM roles
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&role.ID, &role.PortalType, &role.Name, &role.Permissions, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *roleRepo) GetByName(ctx context.Context, portalType, name string) (*models.Role, error) {
	role := &models.Role{}
	query := `
		SELECT id, portal_type, name, permissions, created_at, updated_at
		FROM roles
		WHERE portal_type = $1 AND name = $2
	`
	err := r.db.QueryRow(ctx, query, portalType, name).Scan(&role.ID, &role.PortalType, &role.Name, &role.Permissions, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *roleRepo) Update(ctx context.Context, role *models.Role) error {
	query := `
		UPDATE roles
		SET name = $1, permissions = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, role.Name, role.Permissions, role.ID)
	return err
}

// Delete removes the role row. Users still referencing the role keep a
// dangling role_id; authorization then degrades to no permissions rather
// than erroring.
func (r *roleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM roles WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *roleRepo) List(ctx context.Context, portalType string, limit, offset int) ([]*models.Role, error) {
	query := `
		SELECT id, portal_type, name, permissions, created_at, updated_at
		FROM roles
		WHERE ($1 = '' OR portal_type = $1)
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, portalType, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.PortalType, &role.Name, &role.Permissions, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
