package tenantctx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"legal-office-api/internal/tenantctx"
)

func TestWithTenantRejectsInvalidIdentifier(t *testing.T) {
	mgr := tenantctx.New(nil) // invalid IDs are rejected before any DB work

	for _, id := range []string{"", "not-a-uuid", "123", "8400-e29b-41d4"} {
		called := false
		err := mgr.WithTenant(context.Background(), id, func(conn *gorm.DB) error {
			called = true
			return nil
		})
		require.Error(t, err, id)
		assert.ErrorIs(t, err, tenantctx.ErrInvalidTenantID, id)
		assert.False(t, called, id)

		var bindErr *tenantctx.BindingError
		require.ErrorAs(t, err, &bindErr, id)
		assert.Equal(t, "set", bindErr.Op)
		assert.Equal(t, id, bindErr.TenantID)
	}
}

func TestSetRejectsInvalidIdentifier(t *testing.T) {
	err := tenantctx.Set(nil, "definitely not a uuid")
	require.ErrorIs(t, err, tenantctx.ErrInvalidTenantID)
}

func TestBindingErrorMessage(t *testing.T) {
	err := &tenantctx.BindingError{Op: "set", TenantID: "abc", Err: tenantctx.ErrInvalidTenantID}
	assert.Contains(t, err.Error(), "set binding for tenant abc")

	err = &tenantctx.BindingError{Op: "clear", Err: tenantctx.ErrInvalidTenantID}
	assert.Contains(t, err.Error(), "clear binding:")
	assert.NotContains(t, err.Error(), "for tenant")
}
