package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillbazaar/marketplace-backend/api/middleware"
	"github.com/skillbazaar/marketplace-backend/api/responses"
	"github.com/skillbazaar/marketplace-backend/api/validators"
	ordersvc "github.com/skillbazaar/marketplace-backend/internal/orders"
	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/logger"
	"github.com/skillbazaar/marketplace-backend/pkg/pagination"
)

// OrderList returns the caller's orders, newest first.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		records, meta, err := svc.ListByUser(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(records, meta))
	}
}

// OrderDetail returns one of the caller's orders with its line items.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := pathID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		record, err := svc.GetForUser(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(*record))
	}
}

// AdminOrderList returns every order in the system for back-office use.
func AdminOrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, meta, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(records, meta))
	}
}

// AdminOrderUpdateStatus advances an order one step through its
// lifecycle. Assignment requires a provider id.
func AdminOrderUpdateStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := pathID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		record, err := svc.UpdateStatus(r.Context(), ordersvc.UpdateStatusInput{
			OrderID:    orderID,
			Status:     status,
			AssignedTo: payload.AssignedTo,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(*record))
	}
}

type updateOrderStatusRequest struct {
	Status     string `json:"status" validate:"required"`
	AssignedTo *int64 `json:"assigned_to"`
}

type orderItemResponse struct {
	ID         int64           `json:"id"`
	ProfileID  int64           `json:"profile_id"`
	AssignedTo *int64          `json:"assigned_to,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
	Status     string          `json:"status"`
}

type orderResponse struct {
	ID            int64               `json:"id"`
	UserID        int64               `json:"user_id"`
	AssignedTo    *int64              `json:"assigned_to,omitempty"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	GSTAmount     decimal.Decimal     `json:"gst_amount"`
	CreditApplied decimal.Decimal     `json:"credit_applied"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	TotalHours    int                 `json:"total_hours"`
	Status        string              `json:"status"`
	ReviewID      *int64              `json:"review_id,omitempty"`
	Items         []orderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type orderListResponse struct {
	Items []orderResponse `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

func newOrderResponse(record models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, orderItemResponse{
			ID:         item.ID,
			ProfileID:  item.ProfileID,
			AssignedTo: item.AssignedTo,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			LineTotal:  item.LineTotal,
			Status:     string(item.Status),
		})
	}

	return orderResponse{
		ID:            record.ID,
		UserID:        record.UserID,
		AssignedTo:    record.AssignedTo,
		Subtotal:      record.Subtotal,
		GSTAmount:     record.GSTAmount,
		CreditApplied: record.CreditApplied,
		TotalAmount:   record.TotalAmount,
		TotalHours:    record.TotalHours,
		Status:        string(record.Status),
		ReviewID:      record.ReviewID,
		Items:         items,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

func newOrderListResponse(records []models.Order, meta pagination.Meta) orderListResponse {
	items := make([]orderResponse, 0, len(records))
	for _, record := range records {
		items = append(items, newOrderResponse(record))
	}
	return orderListResponse{Items: items, Meta: meta}
}
