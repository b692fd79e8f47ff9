// Package ledger applies entries to client trust accounts.
//
// A trust account balance must never go negative. Each entry runs as one
// database transaction: the balance update and the transaction row are
// committed together or not at all, so a rejected debit leaves no trace.
package ledger

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"legal-office-api/internal/model"
)

// EntryType classifies a trust ledger entry as a credit or a debit.
//
// The legacy books treated a single "adjustment" type as always-debit even
// though adjustments can correct in either direction; the type is split into
// explicit credit and debit variants here instead.
type EntryType string

const (
	Deposit          EntryType = "deposit"
	Interest         EntryType = "interest"
	AdjustmentCredit EntryType = "adjustment_credit"

	Withdrawal      EntryType = "withdrawal"
	Fee             EntryType = "fee"
	Transfer        EntryType = "transfer"
	AdjustmentDebit EntryType = "adjustment_debit"
)

var (
	// ErrInsufficientBalance rejects a debit that would drive the balance
	// negative. Nothing is persisted for the attempt.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrUnknownEntryType rejects an entry type outside the enum.
	ErrUnknownEntryType = errors.New("ledger: unknown entry type")

	// ErrNonPositiveAmount rejects zero or negative amounts; direction is
	// carried by the entry type, never by the sign.
	ErrNonPositiveAmount = errors.New("ledger: amount must be positive")

	// ErrAccountNotFound is returned when the account does not exist or is
	// not visible under the current tenant binding.
	ErrAccountNotFound = errors.New("ledger: trust account not found")
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	switch t {
	case Deposit, Interest, AdjustmentCredit, Withdrawal, Fee, Transfer, AdjustmentDebit:
		return true
	}
	return false
}

// Credit reports whether t increases the balance.
func (t EntryType) Credit() bool {
	switch t {
	case Deposit, Interest, AdjustmentCredit:
		return true
	}
	return false
}

// Apply posts one entry to the account and returns the created transaction
// row. The caller supplies a db handle already scoped to the right tenant;
// under row-level security an account belonging to another tenant is simply
// not found.
func Apply(db *gorm.DB, accountID uuid.UUID, entryType EntryType, amount decimal.Decimal, memo string) (*model.TrustTransaction, error) {
	if !entryType.Valid() {
		return nil, ErrUnknownEntryType
	}
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	var entry model.TrustTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var account model.TrustAccount
		if err := tx.First(&account, "id = ?", accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		var balance decimal.Decimal
		if entryType.Credit() {
			balance = account.Balance.Add(amount)
		} else {
			balance = account.Balance.Sub(amount)
			if balance.IsNegative() {
				return ErrInsufficientBalance
			}
		}

		if err := tx.Model(&account).Update("balance", balance).Error; err != nil {
			return err
		}

		entry = model.TrustTransaction{
			TenantID:  account.TenantID,
			AccountID: account.ID,
			Type:      string(entryType),
			Amount:    amount,
			Memo:      memo,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
