package tenantctx_test

// Integration tests for the tenant session binding against a real PostgreSQL
// database. They run only when TEST_DATABASE_DSN is set, e.g.
//
//	TEST_DATABASE_DSN="host=localhost user=app dbname=app_test sslmode=disable" go test ./...
//
// The connecting role must not be a superuser: superusers bypass row-level
// security entirely and every isolation assertion would fail.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"legal-office-api/internal/model"
	"legal-office-api/internal/tenantctx"
)

const isolationPredicate = "tenant_id = NULLIF(current_setting('app.current_tenant_id', true), '')::uuid"

// newIntegrationDB opens the test database with a single pooled connection so
// that every statement in a test observes the same session state. It creates
// the clients table with its row policy and drops it on cleanup.
func newIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	var superuser string
	require.NoError(t, db.Raw("SELECT current_setting('is_superuser')").Scan(&superuser).Error)
	if superuser == "on" {
		t.Skip("connected as a superuser; row-level security would be bypassed")
	}

	require.NoError(t, db.Migrator().DropTable(&model.Client{}))
	require.NoError(t, db.AutoMigrate(&model.Client{}))
	for _, stmt := range []string{
		"ALTER TABLE clients ENABLE ROW LEVEL SECURITY",
		"ALTER TABLE clients FORCE ROW LEVEL SECURITY",
		fmt.Sprintf("CREATE POLICY tenant_isolation ON clients USING (%s) WITH CHECK (%s)",
			isolationPredicate, isolationPredicate),
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	t.Cleanup(func() {
		_ = db.Exec("SELECT set_config('app.current_tenant_id', '', false)").Error
		_ = db.Migrator().DropTable(&model.Client{})
		_ = sqlDB.Close()
	})
	return db
}

func createClient(t *testing.T, conn *gorm.DB, tenantID uuid.UUID, email string) {
	t.Helper()
	require.NoError(t, conn.Create(&model.Client{
		TenantID: tenantID,
		Name:     "Client " + email,
		Email:    email,
	}).Error)
}

func countClients(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Client{}).Count(&n).Error)
	return n
}

func TestIsolationBetweenTenants(t *testing.T) {
	db := newIntegrationDB(t)
	mgr := tenantctx.New(db)
	ctx := context.Background()

	tenantA := uuid.New()
	tenantB := uuid.New()

	require.NoError(t, mgr.WithTenant(ctx, tenantA.String(), func(conn *gorm.DB) error {
		createClient(t, conn, tenantA, "a@x.com")
		return nil
	}))
	require.NoError(t, mgr.WithTenant(ctx, tenantB.String(), func(conn *gorm.DB) error {
		createClient(t, conn, tenantB, "b@y.com")
		return nil
	}))

	// Each tenant sees exactly its own rows.
	require.NoError(t, mgr.WithTenant(ctx, tenantA.String(), func(conn *gorm.DB) error {
		var clients []model.Client
		require.NoError(t, conn.Find(&clients).Error)
		require.Len(t, clients, 1)
		assert.Equal(t, "a@x.com", clients[0].Email)
		return nil
	}))
	require.NoError(t, mgr.WithTenant(ctx, tenantB.String(), func(conn *gorm.DB) error {
		var clients []model.Client
		require.NoError(t, conn.Find(&clients).Error)
		require.Len(t, clients, 1)
		assert.Equal(t, "b@y.com", clients[0].Email)
		return nil
	}))
}

func TestUnboundSessionSeesNothing(t *testing.T) {
	db := newIntegrationDB(t)
	mgr := tenantctx.New(db)
	ctx := context.Background()

	tenantA := uuid.New()
	require.NoError(t, mgr.WithTenant(ctx, tenantA.String(), func(conn *gorm.DB) error {
		createClient(t, conn, tenantA, "hidden@x.com")
		return nil
	}))

	// No binding: zero rows, not an error and not unfiltered access.
	assert.EqualValues(t, 0, countClients(t, db))

	// An unbound insert is rejected by the policy's WITH CHECK.
	err := db.Create(&model.Client{TenantID: tenantA, Name: "n", Email: "e@x.com"}).Error
	require.Error(t, err)
}

func TestCrossTenantRowLooksAbsent(t *testing.T) {
	db := newIntegrationDB(t)
	mgr := tenantctx.New(db)
	ctx := context.Background()

	tenantA := uuid.New()
	tenantB := uuid.New()

	var clientID uuid.UUID
	require.NoError(t, mgr.WithTenant(ctx, tenantA.String(), func(conn *gorm.DB) error {
		client := model.Client{TenantID: tenantA, Name: "n", Email: "a@x.com"}
		require.NoError(t, conn.Create(&client).Error)
		clientID = client.ID
		return nil
	}))

	require.NoError(t, mgr.WithTenant(ctx, tenantB.String(), func(conn *gorm.DB) error {
		var got model.Client
		err := conn.First(&got, "id = ?", clientID).Error
		require.ErrorIs(t, err, gorm.ErrRecordNotFound)

		// Cross-tenant updates and deletes hit zero rows rather than erroring.
		res := conn.Model(&model.Client{}).Where("id = ?", clientID).Update("name", "stolen")
		require.NoError(t, res.Error)
		assert.EqualValues(t, 0, res.RowsAffected)
		return nil
	}))

	// The row is untouched for its owner.
	require.NoError(t, mgr.WithTenant(ctx, tenantA.String(), func(conn *gorm.DB) error {
		var got model.Client
		require.NoError(t, conn.First(&got, "id = ?", clientID).Error)
		assert.Equal(t, "n", got.Name)
		return nil
	}))
}

func TestBindingClearedAfterWork(t *testing.T) {
	db := newIntegrationDB(t)
	mgr := tenantctx.New(db)
	ctx := context.Background()

	tenantA := uuid.New()
	require.NoError(t, mgr.WithTenant(ctx, tenantA.String(), func(conn *gorm.DB) error {
		bound, ok, err := tenantctx.Current(conn)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, tenantA.String(), bound)
		return nil
	}))

	// The pool holds a single connection, so reading the binding back here
	// observes the same session WithTenant just released.
	require.NoError(t, db.Connection(func(conn *gorm.DB) error {
		_, ok, err := tenantctx.Current(conn)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func TestBindingClearedWhenWorkFails(t *testing.T) {
	db := newIntegrationDB(t)
	mgr := tenantctx.New(db)
	ctx := context.Background()

	sentinel := errors.New("unit of work failed")
	err := mgr.WithTenant(ctx, uuid.NewString(), func(conn *gorm.DB) error {
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	require.NoError(t, db.Connection(func(conn *gorm.DB) error {
		_, ok, err := tenantctx.Current(conn)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func TestClearIsIdempotent(t *testing.T) {
	db := newIntegrationDB(t)

	require.NoError(t, db.Connection(func(conn *gorm.DB) error {
		require.NoError(t, tenantctx.Set(conn, uuid.NewString()))
		require.NoError(t, tenantctx.Clear(conn))
		require.NoError(t, tenantctx.Clear(conn)) // already clear, still fine

		_, ok, err := tenantctx.Current(conn)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func TestCurrentRoundTrip(t *testing.T) {
	db := newIntegrationDB(t)
	tenantID := uuid.NewString()

	require.NoError(t, db.Connection(func(conn *gorm.DB) error {
		_, ok, err := tenantctx.Current(conn)
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, tenantctx.Set(conn, tenantID))
		bound, ok, err := tenantctx.Current(conn)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, tenantID, bound)

		return tenantctx.Clear(conn)
	}))
}
