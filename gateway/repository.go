package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgconn"
	"github.com/lazarofl/payment-gateway/gateway/models"
	"github.com/lib/pq"
)

var (
	ErrNotFound = fmt.Errorf("not found")
	ErrConflict = fmt.Errorf("conflict")
)

// Ledger is the storage capability the orchestrator depends on: a
// mapping from payment id to ledger entry. Entries are never updated
// or deleted.
type Ledger interface {
	// Put inserts the entry under id; it returns ErrConflict if the
	// id is already present.
	Put(ctx context.Context, id string, entry models.LedgerEntry) error
	// Get returns the entry for id or ErrNotFound.
	Get(ctx context.Context, id string) (models.LedgerEntry, error)
	Ping(ctx context.Context) error
}

// Repository is a Ledger with two backends: an in-memory map when db
// is nil, and Postgres otherwise. The Postgres backend expects a
// gateway.payments table with one row per payment.
type Repository struct {
	mu      sync.RWMutex
	entries map[string]models.LedgerEntry

	db *sql.DB
}

func NewRepository() *Repository {
	return &Repository{
		entries: make(map[string]models.LedgerEntry),
	}
}

// NewPGRepository constructs a db-backed repository.
func NewPGRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Put(ctx context.Context, id string, entry models.LedgerEntry) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.entries[id]; ok {
			return fmt.Errorf("payment id exists: %w", ErrConflict)
		}
		r.entries[id] = entry
		return nil
	}

	record := entry.Record
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO gateway.payments(payment_id, status, last_four, expiry_month, expiry_year, currency, amount, authorization_code)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, record.ID, string(record.Status), record.LastFourCardDigits, record.ExpiryMonth, record.ExpiryYear, record.Currency, record.Amount, entry.AuthorizationCode)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *Repository) Get(ctx context.Context, id string) (models.LedgerEntry, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		entry, ok := r.entries[id]
		if !ok {
			return models.LedgerEntry{}, ErrNotFound
		}
		return entry, nil
	}

	row := r.db.QueryRowContext(ctx, `
        SELECT payment_id, status, last_four, expiry_month, expiry_year, currency, amount, authorization_code
        FROM gateway.payments WHERE payment_id=$1
    `, id)

	var entry models.LedgerEntry
	var status string
	err := row.Scan(
		&entry.Record.ID,
		&status,
		&entry.Record.LastFourCardDigits,
		&entry.Record.ExpiryMonth,
		&entry.Record.ExpiryYear,
		&entry.Record.Currency,
		&entry.Record.Amount,
		&entry.AuthorizationCode,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LedgerEntry{}, ErrNotFound
		}
		return models.LedgerEntry{}, err
	}
	entry.Record.Status = models.PaymentStatus(status)

	return entry, nil
}

// Ping returns storage readiness.
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return true
	}
	return false
}
