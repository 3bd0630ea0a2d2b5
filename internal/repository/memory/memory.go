// Package memory provides in-memory implementations of the repository
// interfaces with the same semantics as the Postgres-backed ones,
// including one-winner compare-and-set. Used by service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/repository"
)

// TicketRepository is a mutex-guarded in-memory ticket store.
type TicketRepository struct {
	mu      sync.Mutex
	tickets map[string]*domain.MaintenanceTicket

	// FailWrites forces CompareAndSetStatus to return the given error,
	// simulating an unavailable store.
	FailWrites error
}

// NewTicketRepository creates an empty store.
func NewTicketRepository() *TicketRepository {
	return &TicketRepository{tickets: make(map[string]*domain.MaintenanceTicket)}
}

func copyTicket(t *domain.MaintenanceTicket) *domain.MaintenanceTicket {
	copied := *t
	if t.AssignedProviderID != nil {
		id := *t.AssignedProviderID
		copied.AssignedProviderID = &id
	}
	return &copied
}

func (r *TicketRepository) Create(ctx context.Context, ticket *domain.MaintenanceTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = copyTicket(ticket)
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*domain.MaintenanceTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyTicket(ticket), nil
}

func (r *TicketRepository) CompareAndSetStatus(ctx context.Context, id string, expected, next domain.TicketStatus, providerID *string) (*domain.MaintenanceTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailWrites != nil {
		return nil, r.FailWrites
	}

	ticket, ok := r.tickets[id]
	if !ok || ticket.Status != expected {
		return nil, pgx.ErrNoRows
	}
	ticket.Status = next
	if providerID != nil {
		id := *providerID
		ticket.AssignedProviderID = &id
	}
	ticket.UpdatedAt = time.Now()
	return copyTicket(ticket), nil
}

func (r *TicketRepository) ListByScope(ctx context.Context, scope repository.TicketScope) ([]domain.MaintenanceTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.MaintenanceTicket
	for _, ticket := range r.tickets {
		if matchesScope(ticket, scope) {
			result = append(result, *copyTicket(ticket))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return page(result, scope.Limit, scope.Offset), nil
}

// matchesScope applies the same conjunctive semantics as the durable
// repository: every set fact must hold, and an empty scope matches
// nothing.
func matchesScope(ticket *domain.MaintenanceTicket, scope repository.TicketScope) bool {
	if len(scope.PropertyIDs) == 0 && scope.TenantID == nil && scope.ProviderID == nil {
		return false
	}
	if len(scope.PropertyIDs) > 0 {
		found := false
		for _, propertyID := range scope.PropertyIDs {
			if ticket.PropertyID == propertyID {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if scope.TenantID != nil && ticket.TenantID != *scope.TenantID {
		return false
	}
	if scope.ProviderID != nil && (ticket.AssignedProviderID == nil || *ticket.AssignedProviderID != *scope.ProviderID) {
		return false
	}
	return true
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func (r *TicketRepository) ListIDsByProvider(ctx context.Context, providerID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for _, ticket := range r.tickets {
		if ticket.AssignedProviderID != nil && *ticket.AssignedProviderID == providerID {
			ids = append(ids, ticket.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// AccountRepository is an in-memory account store.
type AccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

// NewAccountRepository creates an empty store.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]*domain.Account)}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; !ok {
		return pgx.ErrNoRows
	}
	account.UpdatedAt = time.Now()
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// PropertyRepository is an in-memory property store.
type PropertyRepository struct {
	mu         sync.Mutex
	properties map[string]*domain.Property
}

// NewPropertyRepository creates an empty store.
func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{properties: make(map[string]*domain.Property)}
}

func copyProperty(p *domain.Property) *domain.Property {
	copied := *p
	if p.TenantID != nil {
		id := *p.TenantID
		copied.TenantID = &id
	}
	return &copied
}

func (r *PropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if property.ID == "" {
		property.ID = uuid.NewString()
	}
	now := time.Now()
	property.CreatedAt = now
	property.UpdatedAt = now
	r.properties[property.ID] = copyProperty(property)
	return nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	property, ok := r.properties[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyProperty(property), nil
}

func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.Property
	for _, property := range r.properties {
		if property.OwnerID == ownerID {
			result = append(result, *copyProperty(property))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *PropertyRepository) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for _, property := range r.properties {
		if property.OwnerID == ownerID {
			ids = append(ids, property.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *PropertyRepository) ListIDsByTenant(ctx context.Context, tenantID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for _, property := range r.properties {
		if property.TenantID != nil && *property.TenantID == tenantID {
			ids = append(ids, property.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *PropertyRepository) SetTenant(ctx context.Context, propertyID, tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	property, ok := r.properties[propertyID]
	if !ok || property.TenantID != nil {
		return pgx.ErrNoRows
	}
	property.TenantID = &tenantID
	property.UpdatedAt = time.Now()
	return nil
}

// RentRepository is an in-memory rent obligation store.
type RentRepository struct {
	mu    sync.Mutex
	rents map[string]*domain.RentObligation
}

// NewRentRepository creates an empty store.
func NewRentRepository() *RentRepository {
	return &RentRepository{rents: make(map[string]*domain.RentObligation)}
}

func copyRent(r *domain.RentObligation) *domain.RentObligation {
	copied := *r
	if r.PaidAt != nil {
		at := *r.PaidAt
		copied.PaidAt = &at
	}
	return &copied
}

func (r *RentRepository) Create(ctx context.Context, rent *domain.RentObligation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rent.ID == "" {
		rent.ID = uuid.NewString()
	}
	now := time.Now()
	rent.CreatedAt = now
	rent.UpdatedAt = now
	r.rents[rent.ID] = copyRent(rent)
	return nil
}

func (r *RentRepository) GetByID(ctx context.Context, id string) (*domain.RentObligation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rent, ok := r.rents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyRent(rent), nil
}

func (r *RentRepository) ListByScope(ctx context.Context, scope repository.RentScope) ([]domain.RentObligation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.RentObligation
	for _, rent := range r.rents {
		if len(scope.PropertyIDs) == 0 && scope.TenantID == nil {
			continue
		}
		if len(scope.PropertyIDs) > 0 {
			found := false
			for _, propertyID := range scope.PropertyIDs {
				if rent.PropertyID == propertyID {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		if scope.TenantID != nil && rent.TenantID != *scope.TenantID {
			continue
		}
		result = append(result, *copyRent(rent))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DueDate.After(result[j].DueDate)
	})
	return page(result, scope.Limit, scope.Offset), nil
}

func (r *RentRepository) MarkPaid(ctx context.Context, id string) (*domain.RentObligation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rent, ok := r.rents[id]
	if !ok || rent.Status != domain.RentStatusDue {
		return nil, pgx.ErrNoRows
	}
	now := time.Now()
	rent.Status = domain.RentStatusPaid
	rent.PaidAt = &now
	rent.UpdatedAt = now
	return copyRent(rent), nil
}

// TicketHistoryRepository is an in-memory audit store.
type TicketHistoryRepository struct {
	mu      sync.Mutex
	entries []domain.TicketHistory
}

// NewTicketHistoryRepository creates an empty store.
func NewTicketHistoryRepository() *TicketHistoryRepository {
	return &TicketHistoryRepository{}
}

func (r *TicketHistoryRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	history.CreatedAt = time.Now()
	r.entries = append(r.entries, *history)
	return nil
}

func (r *TicketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}
