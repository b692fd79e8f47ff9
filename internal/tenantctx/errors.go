package tenantctx

import (
	"errors"
	"fmt"
)

// ErrInvalidTenantID is returned when a tenant identifier does not parse as
// a UUID. The identifier is interpolated into a session variable read by the
// row policies, so only syntactically valid identifiers are ever sent.
var ErrInvalidTenantID = errors.New("tenantctx: invalid tenant identifier")

// BindingError reports a failed set or clear of the session binding. It is
// fatal for the enclosing request; there is no retry.
type BindingError struct {
	Op       string // "set" or "clear"
	TenantID string
	Err      error
}

func (e *BindingError) Error() string {
	if e.TenantID != "" {
		return fmt.Sprintf("tenantctx: %s binding for tenant %s: %v", e.Op, e.TenantID, e.Err)
	}
	return fmt.Sprintf("tenantctx: %s binding: %v", e.Op, e.Err)
}

func (e *BindingError) Unwrap() error { return e.Err }
