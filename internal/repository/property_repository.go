package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/property-service/internal/domain"
)

// PropertyRepository encapsulates property persistence.
type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error)
	ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	ListIDsByTenant(ctx context.Context, tenantID string) ([]string, error)

	// SetTenant links a tenant to a property. Fails with pgx.ErrNoRows
	// when the property already has a tenant; occupancy is first-wins.
	SetTenant(ctx context.Context, propertyID, tenantID string) error
}

type propertyRepository struct {
	pool *pgxpool.Pool
}

// NewPropertyRepository builds repository.
func NewPropertyRepository(pool *pgxpool.Pool) PropertyRepository {
	return &propertyRepository{pool: pool}
}

func (r *propertyRepository) Create(ctx context.Context, property *domain.Property) error {
	const query = `
        INSERT INTO properties (owner_id, name, address)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		property.OwnerID,
		property.Name,
		property.Address,
	).Scan(&property.ID, &property.CreatedAt, &property.UpdatedAt)
}

func (r *propertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	const query = `
        SELECT id, owner_id, name, address, tenant_id, created_at, updated_at
        FROM properties WHERE id=$1`

	var property domain.Property
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&property.ID,
		&property.OwnerID,
		&property.Name,
		&property.Address,
		&property.TenantID,
		&property.CreatedAt,
		&property.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error) {
	const query = `
        SELECT id, owner_id, name, address, tenant_id, created_at, updated_at
        FROM properties WHERE owner_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Property
	for rows.Next() {
		var property domain.Property
		if err := rows.Scan(
			&property.ID,
			&property.OwnerID,
			&property.Name,
			&property.Address,
			&property.TenantID,
			&property.CreatedAt,
			&property.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, property)
	}
	return result, rows.Err()
}

func (r *propertyRepository) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	const query = `SELECT id FROM properties WHERE owner_id=$1`
	return r.listIDs(ctx, query, ownerID)
}

func (r *propertyRepository) ListIDsByTenant(ctx context.Context, tenantID string) ([]string, error) {
	const query = `SELECT id FROM properties WHERE tenant_id=$1`
	return r.listIDs(ctx, query, tenantID)
}

func (r *propertyRepository) SetTenant(ctx context.Context, propertyID, tenantID string) error {
	const query = `
        UPDATE properties SET tenant_id=$1, updated_at=NOW()
        WHERE id=$2 AND tenant_id IS NULL`
	cmd, err := r.pool.Exec(ctx, query, tenantID, propertyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *propertyRepository) listIDs(ctx context.Context, query string, arg any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
