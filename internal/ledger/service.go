package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/pagination"
)

// Service exposes the credit ledger operations.
type Service interface {
	RecordCredit(ctx context.Context, input RecordCreditInput) (*models.LedgerEntry, error)
	RecordDebit(ctx context.Context, input RecordDebitInput) (*models.LedgerEntry, error)
	AvailableBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID int64, params pagination.Params) ([]models.LedgerEntry, pagination.Meta, error)
	Settle(ctx context.Context, entryID int64) (*models.LedgerEntry, error)
}

type service struct {
	repo Repository
}

// NewService builds a ledger service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

// RecordCreditInput captures a manual or referral credit grant.
type RecordCreditInput struct {
	UserID      int64
	Amount      decimal.Decimal
	OrderID     *int64
	Status      enums.LedgerEntryStatus
	Description string
}

// RecordDebitInput captures a credit redemption against an order.
type RecordDebitInput struct {
	UserID      int64
	Amount      decimal.Decimal
	OrderID     int64
	Description string
}

// RecordCredit appends a credit entry.
func (s *service) RecordCredit(ctx context.Context, input RecordCreditInput) (*models.LedgerEntry, error) {
	status := input.Status
	if status == "" {
		status = enums.LedgerEntryStatusPending
	}
	entry, err := NewCreditEntry(input.UserID, input.Amount, input.OrderID, status, input.Description)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record credit")
	}
	return created, nil
}

// RecordDebit appends a settled debit entry.
func (s *service) RecordDebit(ctx context.Context, input RecordDebitInput) (*models.LedgerEntry, error) {
	entry, err := NewDebitEntry(input.UserID, input.Amount, input.OrderID, input.Description)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record debit")
	}
	return created, nil
}

// AvailableBalance returns the user's spendable credit.
func (s *service) AvailableBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	if userID <= 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	balance, err := s.repo.AvailableBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute balance")
	}
	return balance, nil
}

// ListTransactions returns a page of the user's ledger history.
func (s *service) ListTransactions(ctx context.Context, userID int64, params pagination.Params) ([]models.LedgerEntry, pagination.Meta, error) {
	if userID <= 0 {
		return nil, pagination.Meta{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	params = pagination.Normalize(params)

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count ledger entries")
	}
	rows, err := s.repo.ListByUser(ctx, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return rows, pagination.BuildMeta(params, total), nil
}

// Settle flips a pending referral credit to settled, making it
// spendable. Settling anything else is a state conflict.
func (s *service) Settle(ctx context.Context, entryID int64) (*models.LedgerEntry, error) {
	if entryID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entry id is required")
	}

	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ledger entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger entry")
	}
	if entry.Type != enums.LedgerEntryTypeCredit || entry.Status != enums.LedgerEntryStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending credits can be settled")
	}

	if err := s.repo.MarkSettled(ctx, entryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost a race with another settle call.
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending credits can be settled")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle ledger entry")
	}

	entry.Status = enums.LedgerEntryStatusSettled
	return entry, nil
}
