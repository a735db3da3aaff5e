// Package audit records the outcome of every sales rep update and serves the
// recent history to admins.
package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Outcome values stored with each entry.
const (
	OutcomeAssigned = "assigned"
	OutcomeFailed   = "failed"
)

// Entry is one recorded update.
type Entry struct {
	ID            uuid.UUID `json:"id"`
	Outcome       string    `json:"outcome"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerID    string    `json:"customerId,omitempty"`
	Identifier    string    `json:"identifier"`
	RepID         string    `json:"repId,omitempty"`
	RepHandle     string    `json:"repHandle,omitempty"`
	Fallback      bool      `json:"fallback"`
	FailedAt      string    `json:"failedAt,omitempty"`
	ErrorKind     string    `json:"errorKind,omitempty"`
	Message       string    `json:"message,omitempty"`
	RequestID     string    `json:"requestId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Filter narrows a listing.
type Filter struct {
	CustomerEmail string
	Outcome       string
	Limit         int
}

// Store persists entries.
type Store interface {
	Insert(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, filter Filter) ([]Entry, error)
}

// Repository stores entries in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository over pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes entry, assigning an ID when it has none.
func (r *Repository) Insert(ctx context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sales_rep_sync_audit (
			id, outcome, customer_email, customer_id, identifier, rep_id, rep_handle,
			fallback, failed_at, error_kind, message, request_id, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		entry.ID, entry.Outcome, entry.CustomerEmail, entry.CustomerID, entry.Identifier,
		entry.RepID, entry.RepHandle, entry.Fallback, entry.FailedAt, entry.ErrorKind,
		entry.Message, entry.RequestID, entry.OccurredAt,
	)
	return err
}

// Recent lists the newest entries matching filter.
func (r *Repository) Recent(ctx context.Context, filter Filter) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, outcome, customer_email, customer_id, identifier, rep_id, rep_handle,
			fallback, failed_at, error_kind, message, request_id, occurred_at
		FROM sales_rep_sync_audit
		WHERE ($1::text = '' OR lower(customer_email) = lower($1::text))
		  AND ($2::text = '' OR outcome = $2::text)
		ORDER BY occurred_at DESC
		LIMIT $3
	`, strings.TrimSpace(filter.CustomerEmail), filter.Outcome, filter.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.Outcome, &e.CustomerEmail, &e.CustomerID, &e.Identifier, &e.RepID, &e.RepHandle,
			&e.Fallback, &e.FailedAt, &e.ErrorKind, &e.Message, &e.RequestID, &e.OccurredAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
