package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillbazaar/marketplace-backend/api/middleware"
	"github.com/skillbazaar/marketplace-backend/api/responses"
	"github.com/skillbazaar/marketplace-backend/api/validators"
	ledgersvc "github.com/skillbazaar/marketplace-backend/internal/ledger"
	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/logger"
	"github.com/skillbazaar/marketplace-backend/pkg/pagination"
)

// CreditBalance returns the caller's spendable credit balance.
func CreditBalance(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		balance, err := svc.AvailableBalance(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, creditBalanceResponse{Balance: balance})
	}
}

// CreditTransactions returns the caller's ledger history, newest first.
func CreditTransactions(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		records, meta, err := svc.ListTransactions(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]ledgerEntryResponse, 0, len(records))
		for _, record := range records {
			items = append(items, newLedgerEntryResponse(record))
		}
		responses.WriteSuccess(w, ledgerListResponse{Items: items, Meta: meta})
	}
}

// AdminCreditSettle flips a pending referral credit to settled, making
// it spendable.
func AdminCreditSettle(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		entryID, err := pathID(r, "entryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Settle(r.Context(), entryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newLedgerEntryResponse(*record))
	}
}

type creditBalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type ledgerEntryResponse struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	OrderID     *int64          `json:"order_id,omitempty"`
	Status      string          `json:"status"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ledgerListResponse struct {
	Items []ledgerEntryResponse `json:"items"`
	Meta  pagination.Meta       `json:"meta"`
}

func newLedgerEntryResponse(record models.LedgerEntry) ledgerEntryResponse {
	return ledgerEntryResponse{
		ID:          record.ID,
		Type:        string(record.Type),
		Amount:      record.Amount,
		OrderID:     record.OrderID,
		Status:      string(record.Status),
		Description: record.Description,
		CreatedAt:   record.CreatedAt,
	}
}
