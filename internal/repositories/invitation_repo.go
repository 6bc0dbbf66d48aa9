package repositories

import (
	"context"
	"time"

	"harborlink/internal/models"

	"github.com/google/uuid"
)

type InvitationRepository interface {
	Create(ctx context.Context, inv *models.Invitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error)
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	MarkRedeemed(ctx context.Context, id uuid.UUID, at time.Time) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.Invitation, error)
	WithTx(tx Database) InvitationRepository
}

type invitationRepo struct {
	db Database
}

func NewInvitationRepo(db Database) InvitationRepository {
	return &invitationRepo{db: db}
}

func (r *invitationRepo) WithTx(tx Database) InvitationRepository {
	return &invitationRepo{db: tx}
}

func (r *invitationRepo) Create(ctx context.Context, inv *models.Invitation) error {
	query := `
		INSERT INTO invitations (id, organization_id, email, token, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, inv.ID, inv.OrganizationID, inv.Email, inv.Token, inv.Status, inv.ExpiresAt)
	return err
}

func (r *invitationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	inv := &models.Invitation{}
	query := `
		SELECT id, organization_id, email, token, status, expires_at, redeemed_at, created_at
		FROM invitations
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Token, &inv.Status, &inv.ExpiresAt, &inv.RedeemedAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepo) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	inv := &models.Invitation{}
	query := `
		SELECT id, organization_id, email, token, status, expires_at, redeemed_at, created_at
		FROM invitations
		WHERE token = $1
	`
	err := r.db.QueryRow(ctx, query, token).Scan(
		&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Token, &inv.Status, &inv.ExpiresAt, &inv.RedeemedAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepo) MarkRedeemed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE invitations
		SET status = 'redeemed', redeemed_at = $1
		WHERE id = $2 AND status = 'pending'
	`
	_, err := r.db.Exec(ctx, query, at, id)
	return err
}

// ExpireOverdue flips pending invitations past their expiry to expired
// and returns how many rows changed. Run by the background sweeper.
func (r *invitationRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE invitations
		SET status = 'expired'
		WHERE status = 'pending' AND expires_at <= $1
	`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *invitationRepo) List(ctx context.Context, status string, limit, offset int) ([]*models.Invitation, error) {
	query := `
		SELECT id, organization_id, email, token, status, expires_at, redeemed_at, created_at
		FROM invitations
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []*models.Invitation
	for rows.Next() {
		inv := &models.Invitation{}
		if err := rows.Scan(
			&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Token, &inv.Status, &inv.ExpiresAt, &inv.RedeemedAt, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}
