// Package erp adapts ERP customer change events into signed sales rep
// notifications for the sync service.
package erp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"salesrep_sync/platform/apperr"

	"github.com/jackc/pgx/v5"
)

// Employee is the directory view of a sales rep.
type Employee struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IsActive  bool   `json:"isActive"`
}

// DisplayName is the employee's name as shown in the ERP.
func (e Employee) DisplayName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// DirectorySource looks up a rep employee by ERP id.
type DirectorySource interface {
	LookupRep(ctx context.Context, repID string) (*Employee, error)
}

// StaticDirectory is an in-memory DirectorySource keyed by employee id.
type StaticDirectory map[string]Employee

// LookupRep implements DirectorySource.
func (d StaticDirectory) LookupRep(_ context.Context, repID string) (*Employee, error) {
	emp, ok := d[repID]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("employee %q not found", repID))
	}
	emp.ID = repID
	return &emp, nil
}

// Querier is the part of pgxpool.Pool the directory uses.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresDirectory reads employees from the erp_employees mirror table.
type PostgresDirectory struct {
	db Querier
}

// NewPostgresDirectory creates a directory over db.
func NewPostgresDirectory(db Querier) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// LookupRep implements DirectorySource.
func (d *PostgresDirectory) LookupRep(ctx context.Context, repID string) (*Employee, error) {
	var emp Employee
	err := d.db.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, is_active
		FROM erp_employees
		WHERE id = $1
	`, repID).Scan(&emp.ID, &emp.Email, &emp.FirstName, &emp.LastName, &emp.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("employee %q not found", repID))
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "lookup employee", err)
	}
	return &emp, nil
}
