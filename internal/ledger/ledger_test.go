package ledger_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"legal-office-api/internal/ledger"
	"legal-office-api/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&model.TrustAccount{}, &model.TrustTransaction{}))
	return db
}

func newAccount(t *testing.T, db *gorm.DB, balance string) *model.TrustAccount {
	t.Helper()

	b, err := decimal.NewFromString(balance)
	require.NoError(t, err)

	account := &model.TrustAccount{
		TenantID:      uuid.New(),
		ClientID:      uuid.New(),
		AccountNumber: "TA-" + uuid.NewString()[:8],
		Balance:       b,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func balanceOf(t *testing.T, db *gorm.DB, id uuid.UUID) decimal.Decimal {
	t.Helper()

	var account model.TrustAccount
	require.NoError(t, db.First(&account, "id = ?", id).Error)
	return account.Balance
}

func TestApplyDeposit(t *testing.T) {
	db := newTestDB(t)
	account := newAccount(t, db, "0")

	entry, err := ledger.Apply(db, account.ID, ledger.Deposit, decimal.RequireFromString("250.00"), "retainer")
	require.NoError(t, err)

	assert.Equal(t, string(ledger.Deposit), entry.Type)
	assert.Equal(t, account.TenantID, entry.TenantID)
	assert.True(t, balanceOf(t, db, account.ID).Equal(decimal.RequireFromString("250.00")))
}

func TestApplyWithdrawalRejectedWhenInsufficient(t *testing.T) {
	db := newTestDB(t)
	account := newAccount(t, db, "100.00")

	_, err := ledger.Apply(db, account.ID, ledger.Withdrawal, decimal.RequireFromString("150.00"), "")
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// Balance unchanged and no transaction row for the attempt.
	assert.True(t, balanceOf(t, db, account.ID).Equal(decimal.RequireFromString("100.00")))

	var count int64
	require.NoError(t, db.Model(&model.TrustTransaction{}).
		Where("account_id = ?", account.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestApplyDepositThenWithdrawal(t *testing.T) {
	db := newTestDB(t)
	account := newAccount(t, db, "100.00")

	_, err := ledger.Apply(db, account.ID, ledger.Deposit, decimal.RequireFromString("50.00"), "deposit")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond) // keep creation timestamps distinct
	_, err = ledger.Apply(db, account.ID, ledger.Withdrawal, decimal.RequireFromString("30.00"), "withdrawal")
	require.NoError(t, err)

	assert.True(t, balanceOf(t, db, account.ID).Equal(decimal.RequireFromString("120.00")))

	var entries []model.TrustTransaction
	require.NoError(t, db.Where("account_id = ?", account.ID).
		Order("created_at").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, string(ledger.Deposit), entries[0].Type)
	assert.Equal(t, string(ledger.Withdrawal), entries[1].Type)
}

func TestApplyExactBalanceWithdrawal(t *testing.T) {
	db := newTestDB(t)
	account := newAccount(t, db, "75.50")

	_, err := ledger.Apply(db, account.ID, ledger.Withdrawal, decimal.RequireFromString("75.50"), "close out")
	require.NoError(t, err)
	assert.True(t, balanceOf(t, db, account.ID).IsZero())
}

func TestApplyFeeAndInterest(t *testing.T) {
	db := newTestDB(t)
	account := newAccount(t, db, "200.00")

	_, err := ledger.Apply(db, account.ID, ledger.Interest, decimal.RequireFromString("1.25"), "")
	require.NoError(t, err)
	_, err = ledger.Apply(db, account.ID, ledger.Fee, decimal.RequireFromString("25.00"), "wire fee")
	require.NoError(t, err)

	assert.True(t, balanceOf(t, db, account.ID).Equal(decimal.RequireFromString("176.25")))
}

func TestApplyAdjustmentDirections(t *testing.T) {
	db := newTestDB(t)
	account := newAccount(t, db, "10.00")

	_, err := ledger.Apply(db, account.ID, ledger.AdjustmentCredit, decimal.RequireFromString("5.00"), "correction up")
	require.NoError(t, err)
	_, err = ledger.Apply(db, account.ID, ledger.AdjustmentDebit, decimal.RequireFromString("12.00"), "correction down")
	require.NoError(t, err)

	assert.True(t, balanceOf(t, db, account.ID).Equal(decimal.RequireFromString("3.00")))

	// A debit adjustment past zero is rejected like any other debit.
	_, err = ledger.Apply(db, account.ID, ledger.AdjustmentDebit, decimal.RequireFromString("3.01"), "")
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}

func TestApplyRejectsUnknownType(t *testing.T) {
	db := newTestDB(t)
	account := newAccount(t, db, "100.00")

	_, err := ledger.Apply(db, account.ID, ledger.EntryType("adjustment"), decimal.RequireFromString("1.00"), "")
	require.ErrorIs(t, err, ledger.ErrUnknownEntryType)
}

func TestApplyRejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)
	account := newAccount(t, db, "100.00")

	_, err := ledger.Apply(db, account.ID, ledger.Deposit, decimal.Zero, "")
	require.ErrorIs(t, err, ledger.ErrNonPositiveAmount)

	_, err = ledger.Apply(db, account.ID, ledger.Deposit, decimal.RequireFromString("-5.00"), "")
	require.ErrorIs(t, err, ledger.ErrNonPositiveAmount)
}

func TestApplyUnknownAccount(t *testing.T) {
	db := newTestDB(t)

	_, err := ledger.Apply(db, uuid.New(), ledger.Deposit, decimal.RequireFromString("1.00"), "")
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestEntryTypeClassification(t *testing.T) {
	credits := []ledger.EntryType{ledger.Deposit, ledger.Interest, ledger.AdjustmentCredit}
	debits := []ledger.EntryType{ledger.Withdrawal, ledger.Fee, ledger.Transfer, ledger.AdjustmentDebit}

	for _, et := range credits {
		assert.True(t, et.Valid(), string(et))
		assert.True(t, et.Credit(), string(et))
	}
	for _, et := range debits {
		assert.True(t, et.Valid(), string(et))
		assert.False(t, et.Credit(), string(et))
	}
	assert.False(t, ledger.EntryType("refund").Valid())
}
