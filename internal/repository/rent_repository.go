package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/property-service/internal/domain"
)

// RentScope restricts rent listings to an actor's properties or tenancy.
type RentScope struct {
	PropertyIDs []string
	TenantID    *string
	Limit       int
	Offset      int
}

// RentRepository stores rent obligations.
type RentRepository interface {
	Create(ctx context.Context, rent *domain.RentObligation) error
	GetByID(ctx context.Context, id string) (*domain.RentObligation, error)
	ListByScope(ctx context.Context, scope RentScope) ([]domain.RentObligation, error)

	// MarkPaid flips DUE to PAID with the same conditional-write idiom
	// as ticket transitions; pgx.ErrNoRows when the obligation is
	// missing or already paid.
	MarkPaid(ctx context.Context, id string) (*domain.RentObligation, error)
}

type rentRepository struct {
	pool *pgxpool.Pool
}

// NewRentRepository builds repository.
func NewRentRepository(pool *pgxpool.Pool) RentRepository {
	return &rentRepository{pool: pool}
}

const rentColumns = `id, property_id, tenant_id, period, amount_cents, status, due_date, paid_at, created_at, updated_at`

func (r *rentRepository) Create(ctx context.Context, rent *domain.RentObligation) error {
	const query = `
        INSERT INTO rent_obligations (property_id, tenant_id, period, amount_cents, status, due_date)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rent.PropertyID,
		rent.TenantID,
		rent.Period,
		rent.AmountCents,
		rent.Status,
		rent.DueDate,
	).Scan(&rent.ID, &rent.CreatedAt, &rent.UpdatedAt)
}

func (r *rentRepository) GetByID(ctx context.Context, id string) (*domain.RentObligation, error) {
	const query = `SELECT ` + rentColumns + ` FROM rent_obligations WHERE id=$1`
	return r.scanRow(r.pool.QueryRow(ctx, query, id))
}

func (r *rentRepository) MarkPaid(ctx context.Context, id string) (*domain.RentObligation, error) {
	const query = `
        UPDATE rent_obligations
        SET status=$1, paid_at=NOW(), updated_at=NOW()
        WHERE id=$2 AND status=$3
        RETURNING ` + rentColumns
	return r.scanRow(r.pool.QueryRow(ctx, query, domain.RentStatusPaid, id, domain.RentStatusDue))
}

func (r *rentRepository) ListByScope(ctx context.Context, scope RentScope) ([]domain.RentObligation, error) {
	base := `SELECT ` + rentColumns + ` FROM rent_obligations`
	clauses := []string{}
	args := []any{}

	if len(scope.PropertyIDs) > 0 {
		args = append(args, scope.PropertyIDs)
		clauses = append(clauses, fmt.Sprintf("property_id = ANY($%d)", len(args)))
	}
	if scope.TenantID != nil {
		args = append(args, *scope.TenantID)
		clauses = append(clauses, fmt.Sprintf("tenant_id=$%d", len(args)))
	}
	if len(clauses) == 0 {
		return []domain.RentObligation{}, nil
	}

	limit := scope.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := scope.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY due_date DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RentObligation
	for rows.Next() {
		var rent domain.RentObligation
		if err := rows.Scan(
			&rent.ID,
			&rent.PropertyID,
			&rent.TenantID,
			&rent.Period,
			&rent.AmountCents,
			&rent.Status,
			&rent.DueDate,
			&rent.PaidAt,
			&rent.CreatedAt,
			&rent.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rent)
	}
	return result, rows.Err()
}

func (r *rentRepository) scanRow(row pgx.Row) (*domain.RentObligation, error) {
	var rent domain.RentObligation
	if err := row.Scan(
		&rent.ID,
		&rent.PropertyID,
		&rent.TenantID,
		&rent.Period,
		&rent.AmountCents,
		&rent.Status,
		&rent.DueDate,
		&rent.PaidAt,
		&rent.CreatedAt,
		&rent.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rent, nil
}
