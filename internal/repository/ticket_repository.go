package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/property-service/internal/domain"
)

// TicketScope restricts a listing to the tickets an actor may see.
type TicketScope struct {
	// PropertyIDs scopes to tickets of these properties (owner view).
	PropertyIDs []string
	// TenantID scopes to tickets raised by this tenant.
	TenantID *string
	// ProviderID scopes to tickets assigned to this provider.
	ProviderID *string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates maintenance ticket persistence.
// CompareAndSetStatus is the only write path for status and
// assigned_provider_id.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.MaintenanceTicket) error
	GetByID(ctx context.Context, id string) (*domain.MaintenanceTicket, error)

	// CompareAndSetStatus updates status (and optionally the assigned
	// provider) only if the row's current status still equals expected.
	// Returns pgx.ErrNoRows when no row matched, i.e. the ticket does
	// not exist or another writer won the race.
	CompareAndSetStatus(ctx context.Context, id string, expected, next domain.TicketStatus, providerID *string) (*domain.MaintenanceTicket, error)

	ListByScope(ctx context.Context, scope TicketScope) ([]domain.MaintenanceTicket, error)

	// ListIDsByProvider returns ids of tickets currently assigned to the
	// provider. Consumed by the role resolver.
	ListIDsByProvider(ctx context.Context, providerID string) ([]string, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, property_id, tenant_id, assigned_provider_id, title, description, status, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.MaintenanceTicket) error {
	const query = `
        INSERT INTO maintenance_tickets (property_id, tenant_id, title, description, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.PropertyID,
		ticket.TenantID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.MaintenanceTicket, error) {
	const query = `
        SELECT ` + ticketColumns + `
        FROM maintenance_tickets WHERE id=$1`
	return r.scanRow(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketRepository) CompareAndSetStatus(ctx context.Context, id string, expected, next domain.TicketStatus, providerID *string) (*domain.MaintenanceTicket, error) {
	// Single conditional write: the status check and the mutation are
	// one statement, so concurrent writers serialize on the row and at
	// most one matches the expected status.
	const query = `
        UPDATE maintenance_tickets
        SET status=$1,
            assigned_provider_id=COALESCE($2, assigned_provider_id),
            updated_at=NOW()
        WHERE id=$3 AND status=$4
        RETURNING ` + ticketColumns
	return r.scanRow(r.pool.QueryRow(ctx, query, next, providerID, id, expected))
}

func (r *ticketRepository) ListByScope(ctx context.Context, scope TicketScope) ([]domain.MaintenanceTicket, error) {
	base := `SELECT ` + ticketColumns + ` FROM maintenance_tickets`
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
	if scope.ProviderID != nil {
		args = append(args, *scope.ProviderID)
		clauses = append(clauses, fmt.Sprintf("assigned_provider_id=$%d", len(args)))
	}
	if len(clauses) == 0 {
		// A scope without facts matches nothing, not everything.
		return []domain.MaintenanceTicket{}, nil
	}

	limit := scope.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := scope.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListIDsByProvider(ctx context.Context, providerID string) ([]string, error) {
	const query = `SELECT id FROM maintenance_tickets WHERE assigned_provider_id=$1`
	rows, err := r.pool.Query(ctx, query, providerID)
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

func (r *ticketRepository) scanRow(row pgx.Row) (*domain.MaintenanceTicket, error) {
	var ticket domain.MaintenanceTicket
	if err := row.Scan(
		&ticket.ID,
		&ticket.PropertyID,
		&ticket.TenantID,
		&ticket.AssignedProviderID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.MaintenanceTicket, error) {
	var result []domain.MaintenanceTicket
	for rows.Next() {
		var ticket domain.MaintenanceTicket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.PropertyID,
			&ticket.TenantID,
			&ticket.AssignedProviderID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
