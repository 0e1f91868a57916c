package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/money"
)

// NewCreditEntry builds an append-only credit entry. Referral rewards
// start pending and become spendable only once settled.
func NewCreditEntry(userID int64, amount decimal.Decimal, orderID *int64, status enums.LedgerEntryStatus, description string) (*models.LedgerEntry, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ledger entry status")
	}
	return &models.LedgerEntry{
		UserID:      userID,
		Type:        enums.LedgerEntryTypeCredit,
		Amount:      money.Round2(amount),
		OrderID:     orderID,
		Status:      status,
		Description: strings.TrimSpace(description),
	}, nil
}

// NewDebitEntry builds a settled debit entry tied to the order that
// consumed the credit. Debits are never pending.
func NewDebitEntry(userID int64, amount decimal.Decimal, orderID int64, description string) (*models.LedgerEntry, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return &models.LedgerEntry{
		UserID:      userID,
		Type:        enums.LedgerEntryTypeDebit,
		Amount:      money.Round2(amount),
		OrderID:     &orderID,
		Status:      enums.LedgerEntryStatusSettled,
		Description: strings.TrimSpace(description),
	}, nil
}
