package database

import (
	"fmt"

	"gorm.io/gorm"
)

// tenantScopedTables lists every table protected by a row policy. Users,
// tenants, and memberships are excluded: authentication runs before any
// tenant binding exists.
var tenantScopedTables = []string{
	"clients",
	"courts",
	"cases",
	"sessions",
	"appointments",
	"documents",
	"invoices",
	"payments",
	"trust_accounts",
	"trust_transactions",
}

// rlsPredicate matches a row's tenant against the session binding. NULLIF
// turns a cleared (empty-string) binding into NULL so the comparison is
// never true and never a cast error: unset or cleared means zero rows.
const rlsPredicate = "tenant_id = NULLIF(current_setting('app.current_tenant_id', true), '')::uuid"

// applyRowPolicies enables and forces row-level security on each
// tenant-scoped table and (re)creates its tenant_isolation policy. FORCE is
// required because the service typically connects as the table owner, which
// RLS would otherwise exempt.
func applyRowPolicies(db *gorm.DB) error {
	for _, table := range tenantScopedTables {
		stmts := []string{
			fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY", table),
			fmt.Sprintf("ALTER TABLE %s FORCE ROW LEVEL SECURITY", table),
			fmt.Sprintf("DROP POLICY IF EXISTS tenant_isolation ON %s", table),
			fmt.Sprintf("CREATE POLICY tenant_isolation ON %s USING (%s) WITH CHECK (%s)",
				table, rlsPredicate, rlsPredicate),
		}
		for _, stmt := range stmts {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("table %s: %w", table, err)
			}
		}
	}
	return nil
}
