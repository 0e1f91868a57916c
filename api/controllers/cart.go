package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillbazaar/marketplace-backend/api/middleware"
	"github.com/skillbazaar/marketplace-backend/api/responses"
	"github.com/skillbazaar/marketplace-backend/api/validators"
	cartsvc "github.com/skillbazaar/marketplace-backend/internal/cart"
	"github.com/skillbazaar/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/skillbazaar/marketplace-backend/pkg/errors"
	"github.com/skillbazaar/marketplace-backend/pkg/logger"
)

// CartList returns the caller's active cart lines with a running total.
func CartList(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		items, err := svc.ListActive(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartListResponse(items))
	}
}

// CartAddItem adds a service profile to the caller's cart, merging into
// an existing line for the same profile.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		item, err := svc.AddItem(r.Context(), userID, cartsvc.AddItemInput{
			ProfileID: payload.ProfileID,
			UnitPrice: payload.UnitPrice,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartItemResponse(*item))
	}
}

// CartUpdateQuantity replaces the quantity on one active cart line.
func CartUpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		cartItemID, err := pathID(r, "cartItemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		item, err := svc.UpdateQuantity(r.Context(), userID, cartItemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartItemResponse(*item))
	}
}

// CartRemoveItem drops the active line for a profile. Removing a profile
// that is not in the cart succeeds quietly.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		profileID, err := pathID(r, "profileId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if err := svc.RemoveItem(r.Context(), userID, profileID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

type addCartItemRequest struct {
	ProfileID int64           `json:"profile_id" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
	Quantity  int             `json:"quantity"`
}

type updateCartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type cartItemResponse struct {
	ID        int64            `json:"id"`
	ProfileID int64            `json:"profile_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	LineTotal decimal.Decimal  `json:"line_total"`
	Status    string           `json:"status"`
	Profile   *profileResponse `json:"profile,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type cartListResponse struct {
	Items     []cartItemResponse `json:"items"`
	CartTotal decimal.Decimal    `json:"cart_total"`
}

func newCartItemResponse(item models.CartItem) cartItemResponse {
	resp := cartItemResponse{
		ID:        item.ID,
		ProfileID: item.ProfileID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		LineTotal: item.LineTotal,
		Status:    string(item.Status),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if item.Profile != nil {
		profile := newProfileResponse(*item.Profile)
		resp.Profile = &profile
	}
	return resp
}

func newCartListResponse(items []models.CartItem) cartListResponse {
	resp := cartListResponse{
		Items:     make([]cartItemResponse, 0, len(items)),
		CartTotal: decimal.Zero,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, newCartItemResponse(item))
		resp.CartTotal = resp.CartTotal.Add(item.LineTotal)
	}
	return resp
}
