// Package tenantctx binds the current tenant to the database session so that
// the row-level security policies can see it.
//
// Every tenant-scoped table carries a policy comparing its tenant_id against
// the session variable app.current_tenant_id. The binding is per physical
// connection, so it must be set on the same connection that issues the
// tenant-scoped queries and cleared before the pool can hand that connection
// to another request. Manager.WithTenant pins one connection for the whole
// unit of work and guarantees the clear on every exit path.
//
// When no binding is set the policies match nothing: a missing or cleared
// binding yields zero rows, never unfiltered access.
package tenantctx

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionVar is the PostgreSQL session variable the row policies read.
const SessionVar = "app.current_tenant_id"

// Manager runs tenant-scoped units of work against a connection pool.
type Manager struct {
	db *gorm.DB
}

// New returns a Manager over the given database handle.
func New(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// WithTenant pins a single connection, binds tenantID on it, runs fn with
// that connection, and clears the binding afterwards regardless of how fn
// exits. fn's error propagates unchanged; a clear failure is reported only
// when fn itself succeeded.
func (m *Manager) WithTenant(ctx context.Context, tenantID string, fn func(conn *gorm.DB) error) error {
	if _, err := uuid.Parse(tenantID); err != nil {
		return &BindingError{Op: "set", TenantID: tenantID, Err: ErrInvalidTenantID}
	}
	return m.db.WithContext(ctx).Connection(func(conn *gorm.DB) (err error) {
		if err = Set(conn, tenantID); err != nil {
			return err
		}
		defer func() {
			if clearErr := Clear(conn); clearErr != nil && err == nil {
				err = clearErr
			}
		}()
		return fn(conn)
	})
}

// Set establishes the tenant binding on conn. The identifier must parse as
// a UUID; anything else is rejected before touching the database.
func Set(conn *gorm.DB, tenantID string) error {
	if _, err := uuid.Parse(tenantID); err != nil {
		return &BindingError{Op: "set", TenantID: tenantID, Err: ErrInvalidTenantID}
	}
	if err := conn.Exec("SELECT set_config('"+SessionVar+"', ?, false)", tenantID).Error; err != nil {
		return &BindingError{Op: "set", TenantID: tenantID, Err: err}
	}
	return nil
}

// Clear resets the binding on conn to the empty string, which the row
// policies treat as "match nothing". Clearing an already-clear binding is a
// no-op; only a connection failure is an error.
func Clear(conn *gorm.DB) error {
	if err := conn.Exec("SELECT set_config('" + SessionVar + "', '', false)").Error; err != nil {
		return &BindingError{Op: "clear", Err: err}
	}
	return nil
}

// Current reads the binding back from conn. It reports ok=false when the
// binding is unset or empty. This is for diagnostics and tests; authorization
// is enforced by the row policies, never by checking this value.
func Current(conn *gorm.DB) (tenantID string, ok bool, err error) {
	var value *string
	row := conn.Raw("SELECT current_setting('" + SessionVar + "', true)").Row()
	if err := row.Scan(&value); err != nil {
		return "", false, &BindingError{Op: "read", Err: err}
	}
	if value == nil || *value == "" {
		return "", false, nil
	}
	return *value, true, nil
}
